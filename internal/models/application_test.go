package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMention_JSON(t *testing.T) {
	tests := []struct {
		name    string
		mention Mention
		want    string
	}{
		{name: "unknown encodes as null", mention: Mention{}, want: `null`},
		{name: "absent encodes as sentinel", mention: NotMentioned(), want: `"no mention"`},
		{name: "provided encodes value", mention: Mentioned("29"), want: `"29"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.mention)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var decoded Mention
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.mention, decoded)
		})
	}
}

func TestMention_String(t *testing.T) {
	assert.Equal(t, "", Mention{}.String())
	assert.Equal(t, NoMention, NotMentioned().String())
	assert.Equal(t, "single", Mentioned("single").String())
	assert.True(t, Mentioned("x").Provided())
	assert.False(t, NotMentioned().Provided())
}

func TestApplication_CloneIsDeep(t *testing.T) {
	income := 1200000.0
	score := 720
	no := false
	app := &Application{
		City:            "Hyderabad",
		Employment:      EmploymentSalaried,
		Salaried:        &SalariedDetails{Employer: "Infosys", Income: &income},
		CreditScore:     &score,
		HasDefaults:     &no,
		FilteredLenders: []string{"HDFC"},
		FinalOffer:      &Offer{Amount: 4000000},
	}

	c := app.Clone()
	*c.Salaried.Income = 1
	c.Salaried.Employer = "TCS"
	*c.CreditScore = 1
	c.FilteredLenders[0] = "SBI"
	c.FinalOffer.Amount = 1

	assert.Equal(t, 1200000.0, *app.Salaried.Income)
	assert.Equal(t, "Infosys", app.Salaried.Employer)
	assert.Equal(t, 720, *app.CreditScore)
	assert.Equal(t, "HDFC", app.FilteredLenders[0])
	assert.Equal(t, int64(4000000), app.FinalOffer.Amount)
}

func TestApplication_JSONRoundTrip(t *testing.T) {
	yes := true
	app := Application{
		City:          "Pune",
		Age:           Mentioned("31"),
		MaritalStatus: NotMentioned(),
		Employment:    EmploymentBusiness,
		Business:      &BusinessDetails{CompanyName: "Acme", Turnover: "2Cr", Profit: "40L"},
		PropertyType:  PropertyResale,
		Property:      Property{PreviousOwner: "Mr. Reddy"},
		HasDefaults:   &yes,
	}

	data, err := json.Marshal(app)
	require.NoError(t, err)

	var decoded Application
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, app, decoded)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "no mention", raw["marital_status"])
	assert.Nil(t, raw["email"])
	assert.Equal(t, true, raw["has_defaults"])
	assert.NotContains(t, raw, "credit_score")
}
