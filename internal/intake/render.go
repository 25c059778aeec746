package intake

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"loan-intake/internal/models"
)

// NotProvided is shown for an empty slot.
const NotProvided = "Not provided"

// OfferSummary is the bot reply for a completed application.
func OfferSummary(app *models.Application) string {
	offer := models.Offer{}
	if app.FinalOffer != nil {
		offer = *app.FinalOffer
	}
	return fmt.Sprintf("🎉 Here's your loan offer:\n\n- Lenders: %s\n- Amount: ₹%d\n- EMI: ₹%d/month\n- Rate of Interest: %s%%\n- Tenure: %d years",
		strings.Join(app.FilteredLenders, ", "),
		offer.Amount,
		offer.EMI,
		strconv.FormatFloat(offer.ROI, 'f', -1, 64),
		offer.Tenure,
	)
}

type PanelField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type PanelSection struct {
	Title  string       `json:"title"`
	Fields []PanelField `json:"fields"`
}

var printer = message.NewPrinter(language.English)

// Panel lays out the application for the side panel.
func Panel(app *models.Application) []PanelSection {
	sections := []PanelSection{
		{
			Title: "Personal Info",
			Fields: []PanelField{
				{"City", orNotProvided(app.City)},
				{"Age", mention(app.Age)},
				{"Marital Status", mention(app.MaritalStatus)},
				{"Email", mention(app.Email)},
				{"Mobile", mention(app.Mobile)},
			},
		},
		employmentSection(app),
		propertySection(app),
		{
			Title: "Credit Info",
			Fields: []PanelField{
				{"Credit Score", creditScore(app.CreditScore)},
				{"Has Defaults", yesNo(app.HasDefaults)},
				{"Defaults in Last 12 Months", yesNo(app.DefaultWithin12Months)},
			},
		},
	}

	if app.FinalOffer != nil {
		o := app.FinalOffer
		sections = append(sections, PanelSection{
			Title: "Final Loan Offer",
			Fields: []PanelField{
				{"Lenders", strings.Join(app.FilteredLenders, ", ")},
				{"Loan Amount", printer.Sprintf("₹%d", o.Amount)},
				{"EMI", printer.Sprintf("₹%d/month", o.EMI)},
				{"Interest Rate", strconv.FormatFloat(o.ROI, 'f', -1, 64) + "%"},
				{"Tenure", fmt.Sprintf("%d years", o.Tenure)},
			},
		})
	}
	return sections
}

func employmentSection(app *models.Application) PanelSection {
	s := PanelSection{
		Title:  "Employment",
		Fields: []PanelField{{"Employment Type", orNotProvided(string(app.Employment))}},
	}

	switch app.Employment {
	case models.EmploymentSalaried:
		d := models.SalariedDetails{}
		if app.Salaried != nil {
			d = *app.Salaried
		}
		s.Fields = append(s.Fields,
			PanelField{"Employer", orNotProvided(d.Employer)},
			PanelField{"Income", income(d.Income)},
			PanelField{"Mode", orNotProvided(d.Mode)},
		)
	case models.EmploymentBusiness:
		d := models.BusinessDetails{}
		if app.Business != nil {
			d = *app.Business
		}
		s.Fields = append(s.Fields,
			PanelField{"Company Name", orNotProvided(d.CompanyName)},
			PanelField{"Turnover", orNotProvided(d.Turnover)},
			PanelField{"Profit", orNotProvided(d.Profit)},
		)
	}
	return s
}

func propertySection(app *models.Application) PanelSection {
	s := PanelSection{
		Title:  "Property Info",
		Fields: []PanelField{{"Property Type", orNotProvided(string(app.PropertyType))}},
	}

	p := app.Property
	for _, f := range []PanelField{
		{"Builder Name", p.BuilderName},
		{"Market Value", p.MarketValue},
		{"Previous Owner", p.PreviousOwner},
		{"Age of Property", p.AgeOfProperty},
	} {
		if f.Value != "" {
			s.Fields = append(s.Fields, f)
		}
	}
	return s
}

func orNotProvided(s string) string {
	if s == "" {
		return NotProvided
	}
	return s
}

func mention(m models.Mention) string {
	return orNotProvided(m.String())
}

func income(v *float64) string {
	if v == nil || *v == 0 {
		return NotProvided
	}
	if *v == math.Trunc(*v) {
		return printer.Sprintf("₹%d", int64(*v))
	}
	return printer.Sprintf("₹%.2f", *v)
}

func creditScore(v *int) string {
	if v == nil {
		return NotProvided
	}
	return strconv.Itoa(*v)
}

func yesNo(v *bool) string {
	switch {
	case v == nil:
		return NotProvided
	case *v:
		return "Yes"
	default:
		return "No"
	}
}
