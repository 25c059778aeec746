// Package models holds the loan application aggregate and its sub-records.
package models

import (
	"bytes"
	"encoding/json"
)

type EmploymentType string

const (
	EmploymentSalaried EmploymentType = "salaried"
	EmploymentBusiness EmploymentType = "business"
)

type PropertyType string

const (
	PropertyNew    PropertyType = "new"
	PropertyResale PropertyType = "resale"
)

// NoMention is the wire form of a personal field the applicant never stated.
const NoMention = "no mention"

type MentionState int

const (
	MentionUnknown MentionState = iota
	MentionAbsent
	MentionProvided
)

// Mention is an optional personal detail. It separates "never extracted",
// "extracted but not stated" and "stated".
type Mention struct {
	State MentionState
	Value string
}

func Mentioned(value string) Mention {
	return Mention{State: MentionProvided, Value: value}
}

func NotMentioned() Mention {
	return Mention{State: MentionAbsent}
}

func (m Mention) Provided() bool {
	return m.State == MentionProvided
}

// String returns the value, the "no mention" sentinel, or "" when unknown.
func (m Mention) String() string {
	switch m.State {
	case MentionProvided:
		return m.Value
	case MentionAbsent:
		return NoMention
	default:
		return ""
	}
}

func (m Mention) MarshalJSON() ([]byte, error) {
	if m.State == MentionUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(m.String())
}

func (m *Mention) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Mention{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == NoMention {
		*m = NotMentioned()
		return nil
	}
	*m = Mentioned(s)
	return nil
}

type SalariedDetails struct {
	Employer string   `json:"employer,omitempty"`
	Income   *float64 `json:"income,omitempty"`
	Mode     string   `json:"mode,omitempty"`
}

type BusinessDetails struct {
	CompanyName string `json:"company_name,omitempty"`
	Turnover    string `json:"turnover,omitempty"`
	Profit      string `json:"profit,omitempty"`
}

// Property collects every property detail seen so far. Which fields matter
// depends on Application.PropertyType.
type Property struct {
	BuilderName   string `json:"builder_name,omitempty"`
	MarketValue   string `json:"market_value,omitempty"`
	PreviousOwner string `json:"previous_owner,omitempty"`
	AgeOfProperty string `json:"age_of_property,omitempty"`
}

func (p Property) Empty() bool {
	return p == Property{}
}

type Offer struct {
	Amount int64   `json:"amount"`
	EMI    int64   `json:"emi"`
	ROI    float64 `json:"roi"`
	Tenure int     `json:"tenure"`
}

// Application is the in-progress form of one applicant.
type Application struct {
	City          string  `json:"city,omitempty"`
	Age           Mention `json:"age"`
	MaritalStatus Mention `json:"marital_status"`
	Email         Mention `json:"email"`
	Mobile        Mention `json:"mobile"`

	Employment EmploymentType   `json:"employment,omitempty"`
	Salaried   *SalariedDetails `json:"salaried,omitempty"`
	Business   *BusinessDetails `json:"business,omitempty"`

	PropertyType PropertyType `json:"property_type,omitempty"`
	Property     Property     `json:"property"`

	CreditScore           *int  `json:"credit_score,omitempty"`
	HasDefaults           *bool `json:"has_defaults,omitempty"`
	DefaultWithin12Months *bool `json:"default_within_12_months,omitempty"`

	FilteredLenders []string `json:"filtered_lenders,omitempty"`
	FinalOffer      *Offer   `json:"final_offer,omitempty"`
}

// Clone returns a deep copy.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.Salaried != nil {
		s := *a.Salaried
		if a.Salaried.Income != nil {
			income := *a.Salaried.Income
			s.Income = &income
		}
		c.Salaried = &s
	}
	if a.Business != nil {
		b := *a.Business
		c.Business = &b
	}
	if a.CreditScore != nil {
		v := *a.CreditScore
		c.CreditScore = &v
	}
	if a.HasDefaults != nil {
		v := *a.HasDefaults
		c.HasDefaults = &v
	}
	if a.DefaultWithin12Months != nil {
		v := *a.DefaultWithin12Months
		c.DefaultWithin12Months = &v
	}
	if a.FilteredLenders != nil {
		c.FilteredLenders = append([]string(nil), a.FilteredLenders...)
	}
	if a.FinalOffer != nil {
		o := *a.FinalOffer
		c.FinalOffer = &o
	}
	return &c
}

// ContactEmail returns the applicant email when one was stated.
func (a *Application) ContactEmail() string {
	if a.Email.Provided() {
		return a.Email.Value
	}
	return ""
}

// ContactMobile returns the applicant mobile number when one was stated.
func (a *Application) ContactMobile() string {
	if a.Mobile.Provided() {
		return a.Mobile.Value
	}
	return ""
}
