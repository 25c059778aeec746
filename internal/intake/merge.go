package intake

import (
	"strings"

	"loan-intake/internal/models"
	"loan-intake/pkg/registry"
)

// mergeResult lists the keys a merge wrote and the keys it had to drop
// because their values did not coerce.
type mergeResult struct {
	written  []string
	rejected []string
}

func (r *mergeResult) write(key string)  { r.written = append(r.written, key) }
func (r *mergeResult) reject(key string) { r.rejected = append(r.rejected, key) }

// Merge folds one task's parsed output into app and reports whether app
// changed. Only keys the task declares are read, and a populated slot is never
// overwritten.
func Merge(app *models.Application, task registry.Task, fields Fields) bool {
	return len(merge(app, task, fields).written) > 0
}

func merge(app *models.Application, task registry.Task, fields Fields) mergeResult {
	m := merger{app: app, task: task, fields: fields}

	switch task.Name {
	case registry.TaskIncomeType:
		m.employment()
	case registry.TaskSalaried:
		m.salaried()
	case registry.TaskBusiness:
		m.business()
	case registry.TaskPersonalInfo:
		m.personal()
	case registry.TaskPropertyType:
		m.propertyType()
		m.property()
	case registry.TaskNewProperty, registry.TaskResaleProperty:
		m.property()
	case registry.TaskCredit:
		m.credit()
	}
	return m.result
}

type merger struct {
	app    *models.Application
	task   registry.Task
	fields Fields
	result mergeResult
}

// value returns a declared field that is neither null nor a blank string.
func (m *merger) value(key string) (interface{}, bool) {
	if !m.task.Declares(key) {
		return nil, false
	}
	v, ok := m.fields[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// str writes a string field into dst when dst is empty.
func (m *merger) str(key string, dst *string) {
	if *dst != "" {
		return
	}
	v, ok := m.value(key)
	if !ok {
		return
	}
	s, ok := coerceString(v)
	if !ok {
		m.result.reject(key)
		return
	}
	*dst = s
	m.result.write(key)
}

func (m *merger) employment() {
	if m.app.Employment != "" {
		return
	}
	v, ok := m.value("employment")
	if !ok {
		return
	}
	e, ok := coerceEmployment(v)
	if !ok {
		m.result.reject("employment")
		return
	}
	m.app.Employment = e
	m.result.write("employment")
}

func (m *merger) salaried() {
	d := models.SalariedDetails{}
	if m.app.Salaried != nil {
		d = *m.app.Salaried
	}
	before := len(m.result.written)

	m.str("employer", &d.Employer)
	if d.Income == nil {
		if v, ok := m.value("income"); ok {
			if amount, ok := coerceAmount(v); ok {
				d.Income = &amount
				m.result.write("income")
			} else {
				m.result.reject("income")
			}
		}
	}
	m.str("mode", &d.Mode)

	if len(m.result.written) > before {
		m.app.Salaried = &d
	}
}

func (m *merger) business() {
	d := models.BusinessDetails{}
	if m.app.Business != nil {
		d = *m.app.Business
	}
	before := len(m.result.written)

	m.str("company_name", &d.CompanyName)
	m.str("turnover", &d.Turnover)
	m.str("profit", &d.Profit)

	if len(m.result.written) > before {
		m.app.Business = &d
	}
}

func (m *merger) personal() {
	m.str("city", &m.app.City)

	m.mention("age", &m.app.Age)
	m.mention("marital_status", &m.app.MaritalStatus)
	m.mention("email", &m.app.Email)
	m.mention("mobile", &m.app.Mobile)
}

// mention settles an optional personal detail the first time personal
// extraction runs: a stated value, or not mentioned. Both outcomes are final.
func (m *merger) mention(key string, dst *models.Mention) {
	if dst.State != models.MentionUnknown {
		return
	}
	*dst = models.NotMentioned()
	if v, ok := m.value(key); ok {
		if s, ok := coerceString(v); ok && s != models.NoMention {
			*dst = models.Mentioned(s)
		}
	}
	m.result.write(key)
}

func (m *merger) propertyType() {
	if m.app.PropertyType != "" {
		return
	}
	v, ok := m.value("property_type")
	if !ok {
		return
	}
	p, ok := coercePropertyType(v)
	if !ok {
		m.result.reject("property_type")
		return
	}
	m.app.PropertyType = p
	m.result.write("property_type")
}

func (m *merger) property() {
	p := &m.app.Property
	m.str("builder_name", &p.BuilderName)
	m.str("market_value", &p.MarketValue)
	m.str("previous_owner", &p.PreviousOwner)
	m.str("age_of_property", &p.AgeOfProperty)
}

func (m *merger) credit() {
	if m.app.CreditScore == nil {
		if v, ok := m.value("credit_score"); ok {
			if n, ok := coerceScore(v); ok {
				m.app.CreditScore = &n
				m.result.write("credit_score")
			} else {
				m.result.reject("credit_score")
			}
		}
	}
	m.flag("has_defaults", &m.app.HasDefaults)
	m.flag("default_within_12_months", &m.app.DefaultWithin12Months)
}

func (m *merger) flag(key string, dst **bool) {
	if *dst != nil {
		return
	}
	v, ok := m.value(key)
	if !ok {
		return
	}
	b, ok := coerceBool(v)
	if !ok {
		m.result.reject(key)
		return
	}
	*dst = &b
	m.result.write(key)
}
