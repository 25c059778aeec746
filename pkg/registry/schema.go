package registry

// TaskRegistry is the catalog of extraction tasks the intake engine runs.
type TaskRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tasks       []Task `json:"tasks"`
}

// Task is one extraction task: an instruction template over the user's
// latest message and the fields the engine will read from the answer.
type Task struct {
	Name         string                 `json:"name"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Template     string                 `json:"template"`
	Fields       []string               `json:"fields"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
}

// Task names.
const (
	TaskPersonalInfo   = "personal_info"
	TaskIncomeType     = "income_type"
	TaskSalaried       = "salaried"
	TaskBusiness       = "business"
	TaskPropertyType   = "property_type"
	TaskNewProperty    = "new_property"
	TaskResaleProperty = "resale_property"
	TaskCredit         = "credit"
)

// TaskNames lists every task in the order a turn runs them.
var TaskNames = []string{
	TaskIncomeType,
	TaskSalaried,
	TaskBusiness,
	TaskPersonalInfo,
	TaskPropertyType,
	TaskNewProperty,
	TaskResaleProperty,
	TaskCredit,
}

// TemplateVariable is the only variable a task template may reference.
const TemplateVariable = "text"
