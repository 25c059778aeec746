package intake

import (
	"strings"

	"loan-intake/internal/models"
)

// Follow-up questions, in the order NextPrompt asks them.
const (
	PromptCity           = "Which city are you planning to buy the property in?"
	PromptEmployment     = "Are you salaried or a business owner?"
	PromptPropertyType   = "Is the property new or resale?"
	PromptNewProperty    = "Please provide builder name and market value."
	PromptCreditFirstAsk = "What is your credit score and any defaults in past year?"
)

// NextPrompt walks the completion checklist and returns the question for the
// first unmet step. It returns false when nothing is missing. It is a pure
// function of app.
func NextPrompt(app *models.Application) (string, bool) {
	if app.City == "" {
		return PromptCity, true
	}

	switch app.Employment {
	case "":
		return PromptEmployment, true
	case models.EmploymentSalaried:
		d := models.SalariedDetails{}
		if app.Salaried != nil {
			d = *app.Salaried
		}
		if missing := missingItems(
			item{"employer", d.Employer == ""},
			item{"annual income", d.Income == nil || *d.Income == 0},
			item{"income mode (monthly/fixed+variable)", d.Mode == ""},
		); len(missing) > 0 {
			return pleaseProvide(missing, ""), true
		}
	case models.EmploymentBusiness:
		d := models.BusinessDetails{}
		if app.Business != nil {
			d = *app.Business
		}
		if missing := missingItems(
			item{"company name", d.CompanyName == ""},
			item{"turnover", d.Turnover == ""},
			item{"profit", d.Profit == ""},
		); len(missing) > 0 {
			return pleaseProvide(missing, ""), true
		}
	}

	p := app.Property
	switch app.PropertyType {
	case "":
		return PromptPropertyType, true
	case models.PropertyNew:
		if p.BuilderName == "" || p.MarketValue == "" {
			return PromptNewProperty, true
		}
	case models.PropertyResale:
		if missing := missingItems(
			item{"previous owner", p.PreviousOwner == ""},
			item{"age of property", p.AgeOfProperty == ""},
			item{"market value", p.MarketValue == ""},
		); len(missing) > 0 {
			return pleaseProvide(missing, " for resale property"), true
		}
	}

	if app.CreditScore == nil && app.HasDefaults == nil && app.DefaultWithin12Months == nil {
		return PromptCreditFirstAsk, true
	}
	if missing := missingItems(
		item{"credit score", app.CreditScore == nil},
		item{"any past defaults", app.HasDefaults == nil},
		item{"defaults in the past 12 months", app.DefaultWithin12Months == nil},
	); len(missing) > 0 {
		return pleaseProvide(missing, ""), true
	}

	return "", false
}

// IsComplete reports whether every required slot is filled.
func IsComplete(app *models.Application) bool {
	_, missing := NextPrompt(app)
	return !missing
}

type item struct {
	label   string
	missing bool
}

func missingItems(items ...item) []string {
	var out []string
	for _, it := range items {
		if it.missing {
			out = append(out, it.label)
		}
	}
	return out
}

func pleaseProvide(items []string, qualifier string) string {
	return "Please provide: " + strings.Join(items, ", ") + qualifier + "."
}
