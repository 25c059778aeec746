package intake

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields is a normalized field map decoded from one oracle answer.
type Fields map[string]interface{}

// Diagnostic reasons.
const (
	ReasonNoJSON           = "no_json"
	ReasonInvalidJSON      = "invalid_json"
	ReasonEmptySequence    = "empty_sequence"
	ReasonNotAnObject      = "not_an_object"
	ReasonUnsupportedInput = "unsupported_input"
)

// Diagnostic explains why Parse produced no fields.
type Diagnostic struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (d *Diagnostic) String() string {
	if d.Detail == "" {
		return d.Reason
	}
	return d.Reason + ": " + d.Detail
}

// Parse extracts the first JSON object embedded in an oracle answer. raw may
// be a string, a byte slice, or an envelope map carrying the answer under
// "text". Parse never fails: on any problem it returns an empty map and a
// diagnostic.
//
// Every opening bracket is a candidate. A candidate whose span does not decode
// to an object, or to a sequence holding one first, is skipped, so prose such
// as "[as requested]" ahead of the answer does not hide it.
func Parse(raw interface{}) (Fields, *Diagnostic) {
	text, diag := answerText(raw)
	if diag != nil {
		return Fields{}, diag
	}

	var first *Diagnostic
	for start := nextOpening(text, 0); start >= 0; start = nextOpening(text, start+1) {
		span, ok := balancedSpan(text, start)
		if !ok {
			continue
		}
		obj, diag := decodeObject(span)
		if diag == nil {
			fields := make(Fields, len(obj))
			for k, v := range obj {
				fields[NormalizeKey(k)] = v
			}
			return fields, nil
		}
		if first == nil {
			first = diag
		}
	}

	if first == nil {
		return Fields{}, &Diagnostic{Reason: ReasonNoJSON, Detail: preview(text)}
	}
	return Fields{}, first
}

func decodeObject(span string) (map[string]interface{}, *Diagnostic) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return nil, &Diagnostic{Reason: ReasonInvalidJSON, Detail: err.Error()}
	}

	if seq, isSeq := decoded.([]interface{}); isSeq {
		if len(seq) == 0 {
			return nil, &Diagnostic{Reason: ReasonEmptySequence}
		}
		decoded = seq[0]
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, &Diagnostic{Reason: ReasonNotAnObject, Detail: fmt.Sprintf("%T", decoded)}
	}
	return obj, nil
}

// NormalizeKey lowercases a key and turns spaces and hyphens into underscores.
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	if k == "propertytype" {
		return "property_type"
	}
	return k
}

func answerText(raw interface{}) (string, *Diagnostic) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]interface{}:
		if s, ok := v["text"].(string); ok {
			return s, nil
		}
	case map[string]string:
		if s, ok := v["text"]; ok {
			return s, nil
		}
	case nil:
		return "", &Diagnostic{Reason: ReasonNoJSON, Detail: "empty answer"}
	}
	return "", &Diagnostic{Reason: ReasonUnsupportedInput, Detail: fmt.Sprintf("%T", raw)}
}

func nextOpening(s string, from int) int {
	if from >= len(s) {
		return -1
	}
	i := strings.IndexAny(s[from:], "{[")
	if i < 0 {
		return -1
	}
	return from + i
}

// balancedSpan returns the shortest balanced span starting at the bracket at
// start. Brackets inside string literals are ignored.
func balancedSpan(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
