package registry

const personalInfoTemplate = `
Extract the following details from the text as JSON:
- city (required)
- age (optional)
- marital_status (optional)
- email (optional)
- mobile (optional)

Return ONLY a valid JSON like:
{
  "city": "Hyderabad",
  "age": "29",
  "marital_status": "single",
  "email": "abc@gmail.com",
  "mobile": "9876543210"
}

Text: {{.text}}
`

const incomeTypeTemplate = `From the following text, extract employment type ONLY if clearly and explicitly mentioned.

Return JSON like:
{"employment": "salaried"}
OR
{"employment": "business"}

If employment type is not explicitly stated, return {}

Do not infer based on company names or job titles. Do not guess.

Text: {{.text}}
`

const salariedTemplate = `From the following text, extract only the fields that are **clearly present**:
- employer
- income (as a single numeric value where L is lakh and Cr is crore)
- mode (monthly or fixed+variable)

Return a JSON with only the found fields. Do not make up values. Do not guess income based on company names. Do not guess mode until explicitly stated.

If any field is missing, just skip that field in the output.

Text: {{.text}}
`

const businessTemplate = `From the following text, extract business-related details if clearly mentioned:
- company_name
- turnover (as text)
- profit (as text or number)

Return a JSON with only available values. Do not guess or estimate.

Skip fields that are not present in the text.

Text: {{.text}}
`

const propertyTypeTemplate = `Extract property type (new/resale) as JSON from: {{.text}}`

const newPropertyTemplate = `Extract builder_name and market_value from the text ONLY IF explicitly stated.

Return JSON like:
{"builder_name": "MyHome Constructions", "market_value": "80L"}

Skip any field that is not directly stated. Do NOT make assumptions, estimate, or generate values based on common knowledge.

If none are found, return {}

Text: {{.text}}
`

const resalePropertyTemplate = `Extract previous_owner, age_of_property, market_value as JSON from: {{.text}}

Return a JSON like:
{"previous_owner": "Mr. Reddy", "age_of_property": "10 years", "market_value": "65L"}

Do not guess or make assumptions. Skip any field not found in the input.
`

const creditTemplate = `Extract ONLY the following from the text if they are **clearly mentioned**:
- credit_score (as a number)
- has_defaults (true/false)
- default_within_12_months (true/false)

Return JSON like:
{"credit_score": 720, "has_defaults": false, "default_within_12_months": false}

Do NOT guess or hallucinate. If fields are missing or ambiguous, leave them out.

If nothing is present, return {}

Text: {{.text}}
`

var (
	textValue    = map[string]interface{}{"type": []interface{}{"string", "number"}}
	stringValue  = map[string]interface{}{"type": "string"}
	booleanValue = map[string]interface{}{"type": []interface{}{"boolean", "string"}}
)

// Default returns the built-in catalog of the eight extraction tasks.
func Default() *TaskRegistry {
	return &TaskRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-10-01",
		Tasks: []Task{
			{
				Name:        TaskPersonalInfo,
				DisplayName: "Personal Info",
				Description: "City of purchase plus optional age, marital status, email and mobile.",
				Template:    personalInfoTemplate,
				Fields:      []string{"city", "age", "marital_status", "email", "mobile"},
				OutputSchema: objectSchema(map[string]interface{}{
					"city":           stringValue,
					"age":            textValue,
					"marital_status": stringValue,
					"email":          stringValue,
					"mobile":         textValue,
				}),
				Tags: []string{"personal"},
			},
			{
				Name:        TaskIncomeType,
				DisplayName: "Income Type",
				Description: "Employment type when explicitly stated.",
				Template:    incomeTypeTemplate,
				Fields:      []string{"employment"},
				OutputSchema: objectSchema(map[string]interface{}{
					"employment": stringValue,
				}),
				Tags: []string{"employment", "gate"},
			},
			{
				Name:        TaskSalaried,
				DisplayName: "Salaried Details",
				Description: "Employer, income and income mode of a salaried applicant.",
				Template:    salariedTemplate,
				Fields:      []string{"employer", "income", "mode"},
				OutputSchema: objectSchema(map[string]interface{}{
					"employer": stringValue,
					"income":   textValue,
					"mode":     stringValue,
				}),
				Tags: []string{"employment"},
			},
			{
				Name:        TaskBusiness,
				DisplayName: "Business Details",
				Description: "Company name, turnover and profit of a business owner.",
				Template:    businessTemplate,
				Fields:      []string{"company_name", "turnover", "profit"},
				OutputSchema: objectSchema(map[string]interface{}{
					"company_name": stringValue,
					"turnover":     textValue,
					"profit":       textValue,
				}),
				Tags: []string{"employment"},
			},
			{
				Name:        TaskPropertyType,
				DisplayName: "Property Type",
				Description: "Whether the property is new or resale, plus any property details mentioned alongside.",
				Template:    propertyTypeTemplate,
				Fields:      []string{"property_type", "builder_name", "market_value", "previous_owner", "age_of_property"},
				OutputSchema: objectSchema(map[string]interface{}{
					"property_type":   stringValue,
					"builder_name":    stringValue,
					"market_value":    textValue,
					"previous_owner":  stringValue,
					"age_of_property": textValue,
				}),
				Tags: []string{"property", "gate"},
			},
			{
				Name:        TaskNewProperty,
				DisplayName: "New Property",
				Description: "Builder name and market value of a new property.",
				Template:    newPropertyTemplate,
				Fields:      []string{"builder_name", "market_value"},
				OutputSchema: objectSchema(map[string]interface{}{
					"builder_name": stringValue,
					"market_value": textValue,
				}),
				Tags: []string{"property"},
			},
			{
				Name:        TaskResaleProperty,
				DisplayName: "Resale Property",
				Description: "Previous owner, age and market value of a resale property.",
				Template:    resalePropertyTemplate,
				Fields:      []string{"previous_owner", "age_of_property", "market_value"},
				OutputSchema: objectSchema(map[string]interface{}{
					"previous_owner":  stringValue,
					"age_of_property": textValue,
					"market_value":    textValue,
				}),
				Tags: []string{"property"},
			},
			{
				Name:        TaskCredit,
				DisplayName: "Credit Profile",
				Description: "Credit score and default history.",
				Template:    creditTemplate,
				Fields:      []string{"credit_score", "has_defaults", "default_within_12_months"},
				OutputSchema: objectSchema(map[string]interface{}{
					"credit_score":             map[string]interface{}{"type": []interface{}{"integer", "string"}},
					"has_defaults":             booleanValue,
					"default_within_12_months": booleanValue,
				}),
				Tags: []string{"credit"},
			},
		},
	}
}

func objectSchema(properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}
