package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		raw            interface{}
		validateOutput func(t *testing.T, fields Fields, diag *Diagnostic)
	}{
		{
			name: "plain object",
			raw:  `{"city": "Hyderabad"}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, Fields{"city": "Hyderabad"}, fields)
			},
		},
		{
			name: "object wrapped in prose",
			raw:  "Sure! Here is the JSON:\n{\"employment\": \"salaried\"}\nLet me know if you need more.",
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "salaried", fields["employment"])
			},
		},
		{
			name: "prose brackets before the object",
			raw:  `Here is the result [as requested]: {"city": "Hyderabad"}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, Fields{"city": "Hyderabad"}, fields)
			},
		},
		{
			name: "scalar list before the object",
			raw:  "Options were [\"monthly\", \"fixed+variable\"].\n{\"mode\": \"monthly\"}",
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "monthly", fields["mode"])
			},
		},
		{
			name: "malformed object followed by a valid one",
			raw:  `{employer: Infosys} sorry, corrected: {"employer": "Infosys"}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "Infosys", fields["employer"])
			},
		},
		{
			name: "first failure is reported when nothing decodes",
			raw:  `answer [see note] and {broken}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonInvalidJSON, diag.Reason)
				assert.Contains(t, diag.Detail, "invalid character 's'")
				assert.Empty(t, fields)
			},
		},
		{
			name: "text envelope",
			raw:  map[string]interface{}{"text": `{"credit_score": 720}`},
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, float64(720), fields["credit_score"])
			},
		},
		{
			name: "string envelope",
			raw:  map[string]string{"text": `{"mode": "monthly"}`},
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "monthly", fields["mode"])
			},
		},
		{
			name: "bytes",
			raw:  []byte(`{"employer": "Infosys"}`),
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "Infosys", fields["employer"])
			},
		},
		{
			name: "key normalization",
			raw:  `{"Company Name": "Acme", "Market-Value": "80L", "PropertyType": "New"}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "Acme", fields["company_name"])
				assert.Equal(t, "80L", fields["market_value"])
				assert.Equal(t, "New", fields["property_type"])
			},
		},
		{
			name: "sequence takes first element",
			raw:  `[{"property_type": "resale"}, {"property_type": "new"}]`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "resale", fields["property_type"])
			},
		},
		{
			name: "empty sequence",
			raw:  `[]`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonEmptySequence, diag.Reason)
				assert.Empty(t, fields)
			},
		},
		{
			name: "sequence of scalars",
			raw:  `["new"]`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonNotAnObject, diag.Reason)
			},
		},
		{
			name: "no json",
			raw:  "I could not find anything.",
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonNoJSON, diag.Reason)
				assert.NotNil(t, fields)
				assert.Empty(t, fields)
			},
		},
		{
			name: "malformed json",
			raw:  `{city: Hyderabad}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonInvalidJSON, diag.Reason)
				assert.Empty(t, fields)
			},
		},
		{
			name: "unterminated object",
			raw:  `{"city": "Pune"`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonNoJSON, diag.Reason)
			},
		},
		{
			name: "braces inside strings",
			raw:  `{"previous_owner": "Mr. {Reddy}", "age_of_property": "10 years"} trailing }`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "Mr. {Reddy}", fields["previous_owner"])
			},
		},
		{
			name: "nested object stays decodable",
			raw:  `{"property_type": "new", "property": {"builder_name": "MyHome"}}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Equal(t, "new", fields["property_type"])
				assert.IsType(t, map[string]interface{}{}, fields["property"])
			},
		},
		{
			name: "empty object",
			raw:  `{}`,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				assert.Nil(t, diag)
				assert.Empty(t, fields)
			},
		},
		{
			name: "nil",
			raw:  nil,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonNoJSON, diag.Reason)
			},
		},
		{
			name: "unsupported",
			raw:  42,
			validateOutput: func(t *testing.T, fields Fields, diag *Diagnostic) {
				require.NotNil(t, diag)
				assert.Equal(t, ReasonUnsupportedInput, diag.Reason)
				assert.Equal(t, "unsupported_input: int", diag.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, diag := Parse(tt.raw)
			tt.validateOutput(t, fields, diag)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"City":            "city",
		" Marital Status": "marital_status",
		"age-of-property": "age_of_property",
		"propertyType":    "property_type",
		"credit_score":    "credit_score",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeKey(in), in)
	}
}
