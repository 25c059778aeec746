package oracle

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"loan-intake/pkg/registry"
)

// rule extracts one field. The first matching rule for a field wins.
type rule struct {
	field string
	regex *regexp.Regexp
	value func(match []string) interface{}
}

// Rules is an offline oracle built from regular expressions. It answers in
// the same JSON shape a language model would, so the engine treats both alike.
type Rules struct {
	rules map[string][]rule
}

// NewRules returns the rule oracle with the built-in rule set.
func NewRules() *Rules {
	return &Rules{rules: defaultRules()}
}

func (r *Rules) Extract(ctx context.Context, task registry.Task, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	found := make(map[string]interface{})
	for _, rl := range r.rules[task.Name] {
		if _, done := found[rl.field]; done {
			continue
		}
		if !task.Declares(rl.field) {
			continue
		}
		if m := rl.regex.FindStringSubmatch(text); m != nil {
			if v := rl.value(m); v != nil {
				found[rl.field] = v
			}
		}
	}

	data, err := json.Marshal(found)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// captured returns the first non-empty capture group.
func captured(m []string) interface{} {
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return nil
}

func lowered(m []string) interface{} {
	if v, ok := captured(m).(string); ok {
		return strings.ToLower(v)
	}
	return nil
}

func constant(v interface{}) func([]string) interface{} {
	return func([]string) interface{} { return v }
}

func number(m []string) interface{} {
	v, ok := captured(m).(string)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return n
}

const (
	properNoun = `([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*)*)`
	amount     = `(?:₹\s*|[Rr]s\.?\s*)?(\d+(?:[.,]\d+)*\s*(?:[Ll]akhs?|[Ll]acs?|LPA|lpa|[Cc]rores?|[Cc]r|[Ll])?)\b`
	pastYear   = `(?:in|within|during) (?:the )?(?:past|last) (?:year|12 months|twelve months)`
)

func defaultRules() map[string][]rule {
	re := regexp.MustCompile

	propertyRules := []rule{
		{"builder_name", re(`(?:[Bb]uilder(?: name)?(?: is|:)?|[Bb]uilt by|[Bb]y builder)\s+` + properNoun), captured},
		{"market_value", re(`(?i:market value|valued at|value|worth|priced at|costs?)(?: is| of| around|:)?\s*` + amount), captured},
		{"previous_owner", re(`(?:[Pp]revious owner(?: is|:)?|[Oo]wned by|[Bb]ought from|[Ss]eller(?: is|:)?)\s+((?:Mr\.|Mrs\.|Ms\.|Dr\.)?\s?[A-Z]\w*(?:\s+[A-Z]\w*)*)`), captured},
		{"age_of_property", re(`(?i)age of (?:the )?property(?: is|:)?\s*(\d+\s*(?:years?|yrs?))`), captured},
		{"age_of_property", re(`(?i)(?:property|flat|house|building|apartment|home) is (\d+\s*(?:years?|yrs?)) old`), captured},
		{"age_of_property", re(`(?i)(\d+\s*(?:years?|yrs?))[ -]old (?:property|flat|house|building|apartment|home)`), captured},
	}

	rules := map[string][]rule{
		registry.TaskPersonalInfo: {
			{"city", re(`(?i:live in|living in|based in|moving to|relocating to|property in|buy(?:ing)?(?: a)?(?: house| flat| home| property)? in|city(?: is|:)?)\s+` + properNoun), captured},
			{"age", re(`(?i)\b(?:i am|i'm|aged?(?: is|:)?)\s*(\d{2})\b`), captured},
			{"age", re(`(?i)\b(\d{2})\s*(?:years?|yrs?) old\b`), captured},
			{"marital_status", re(`(?i)\b(single|married|divorced|widowed|unmarried)\b`), lowered},
			{"email", re(`([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})`), captured},
			{"mobile", re(`(?:\+91[\s-]?)?\b([6-9]\d{9})\b`), captured},
		},
		registry.TaskIncomeType: {
			{"employment", re(`(?i)\b(?:salaried|salary)\b`), constant("salaried")},
			{"employment", re(`(?i)\b(?:business(?: owner)?|self[- ]employed|entrepreneur)\b`), constant("business")},
		},
		registry.TaskSalaried: {
			{"employer", re(`(?:[Ww]ork(?:ing)?|[Ee]mployed|[Jj]ob)\s+(?:at|for|with)\s+` + properNoun), captured},
			{"employer", re(`(?:[Ee]mployer(?: is|:)?)\s+` + properNoun), captured},
			{"income", re(`(?i:earn(?:ing|s)?|income(?: is|:)?|salary(?: is|:)?|package(?: is|:)?|ctc(?: is|:)?)\s*(?:of\s*)?` + amount), captured},
			{"mode", re(`(?i)\b(fixed\s*(?:\+|and|&)\s*variable)\b`), constant("fixed+variable")},
			{"mode", re(`(?i)\b(monthly)\b`), constant("monthly")},
		},
		registry.TaskBusiness: {
			{"company_name", re(`(?:[Cc]ompany(?: name)?(?: is|:)?|[Oo]wn|[Rr]un|[Ff]irm(?: is|:)?)\s+` + properNoun), captured},
			{"turnover", re(`(?i:turnover)(?: is| of|:)?\s*` + amount), captured},
			{"profit", re(`(?i:profit)(?: is| of|:)?\s*` + amount), captured},
		},
		registry.TaskPropertyType: append([]rule{
			{"property_type", re(`(?i)^\s*(new|resale)\s*[.!]?\s*$`), lowered},
			{"property_type", re(`(?i)\b(new|resale)\s+(?:property|flat|house|home|apartment|villa|one)\b`), lowered},
			{"property_type", re(`(?i)\b(?:property|flat|house|home|apartment) is (new|resale)\b`), lowered},
			{"property_type", re(`(?i)\bre-sale\b`), constant("resale")},
		}, propertyRules...),
		registry.TaskNewProperty:    propertyRules,
		registry.TaskResaleProperty: propertyRules,
		registry.TaskCredit: {
			{"credit_score", re(`(?i)(?:credit score|cibil(?: score)?|score)(?: is| of|:)?\s*(\d{3})\b`), number},
			{"has_defaults", re(`(?i)\b(?:no (?:past )?defaults?|never defaulted|not defaulted|without (?:any )?defaults?)\b`), constant(false)},
			{"has_defaults", re(`(?i)\b(?:had|have|has) (?:a |some |one )?defaults?\b|\bdefaulted\b`), constant(true)},
			{"default_within_12_months", re(`(?i)\bno defaults? ` + pastYear), constant(false)},
			{"default_within_12_months", re(`(?i)\bdefault(?:ed)? ` + pastYear), constant(true)},
			{"default_within_12_months", re(`(?i)\b(?:no (?:past )?defaults?|never defaulted)\b`), constant(false)},
		},
	}
	return rules
}
