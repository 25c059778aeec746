package intake

import (
	"math"
	"strconv"
	"strings"

	"loan-intake/internal/models"
)

// Oracle values arrive as untyped JSON. Each coercion reports false when the
// value should be treated as absent.

func coerceString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	}
	return "", false
}

var amountSuffixes = []struct {
	suffix     string
	multiplier float64
}{
	{"crores", 1e7},
	{"crore", 1e7},
	{"cr", 1e7},
	{"lakhs", 1e5},
	{"lakh", 1e5},
	{"lacs", 1e5},
	{"lac", 1e5},
	{"lpa", 1e5},
	{"l", 1e5},
}

// coerceAmount turns "12L", "1.5 Cr", "₹12,00,000" or 1200000 into an absolute
// amount. Zero counts as absent.
func coerceAmount(v interface{}) (float64, bool) {
	var amount float64
	switch val := v.(type) {
	case float64:
		amount = val
	case int:
		amount = float64(val)
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		s = strings.TrimPrefix(s, "₹")
		s = strings.TrimPrefix(s, "rs.")
		s = strings.TrimPrefix(s, "rs")
		s = strings.NewReplacer(",", "", " ", "").Replace(s)

		multiplier := 1.0
		for _, sfx := range amountSuffixes {
			if strings.HasSuffix(s, sfx.suffix) {
				s = strings.TrimSuffix(s, sfx.suffix)
				multiplier = sfx.multiplier
				break
			}
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		amount = f * multiplier
	default:
		return 0, false
	}

	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false
	}
	return amount, true
}

// coerceScore accepts integral numbers and numeric strings. Zero is a value.
func coerceScore(v interface{}) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// coerceBool accepts booleans and the strings true/false/yes/no. False is a value.
func coerceBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}

func coerceEmployment(v interface{}) (models.EmploymentType, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch e := models.EmploymentType(strings.ToLower(strings.TrimSpace(s))); e {
	case models.EmploymentSalaried, models.EmploymentBusiness:
		return e, true
	}
	return "", false
}

func coercePropertyType(v interface{}) (models.PropertyType, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	switch p := models.PropertyType(strings.ToLower(strings.TrimSpace(s))); p {
	case models.PropertyNew, models.PropertyResale:
		return p, true
	}
	return "", false
}

// collapseNewlines joins the lines of text with single spaces.
func collapseNewlines(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	return strings.TrimSpace(text)
}
