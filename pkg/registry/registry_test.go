package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Tasks, len(TaskNames))

	for _, name := range TaskNames {
		task, ok := reg.Task(name)
		require.True(t, ok, name)
		assert.Contains(t, task.Template, "{{.text}}")
		assert.NotEmpty(t, task.OutputSchema)
	}
}

func TestDefault_PropertyTypeDeclaresSubfields(t *testing.T) {
	task, ok := Default().Task(TaskPropertyType)
	require.True(t, ok)

	for _, f := range []string{"property_type", "builder_name", "market_value", "previous_owner", "age_of_property"} {
		assert.True(t, task.Declares(f), f)
	}
	assert.False(t, task.Declares("city"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TaskRegistry)
		wantErr string
	}{
		{
			name:   "default",
			mutate: func(r *TaskRegistry) {},
		},
		{
			name:    "empty",
			mutate:  func(r *TaskRegistry) { r.Tasks = nil },
			wantErr: "no tasks",
		},
		{
			name:    "missing task",
			mutate:  func(r *TaskRegistry) { r.Tasks = r.Tasks[:7] },
			wantErr: "missing tasks: credit",
		},
		{
			name:    "duplicate",
			mutate:  func(r *TaskRegistry) { r.Tasks = append(r.Tasks, r.Tasks[0]) },
			wantErr: "duplicate task name",
		},
		{
			name:    "template without text",
			mutate:  func(r *TaskRegistry) { r.Tasks[0].Template = "Extract the city." },
			wantErr: "does not reference",
		},
		{
			name:    "blank template",
			mutate:  func(r *TaskRegistry) { r.Tasks[1].Template = "  " },
			wantErr: "missing required field: template",
		},
		{
			name:    "no fields",
			mutate:  func(r *TaskRegistry) { r.Tasks[2].Fields = nil },
			wantErr: "declares no fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Default()
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")

	reg := Default()
	reg.Tasks[0].Description = "tuned"
	require.NoError(t, Save(reg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	task, ok := loaded.Task(TaskIncomeType)
	require.True(t, ok)
	assert.Equal(t, "tuned", task.Description)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Version, reg.Version)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	partial := filepath.Join(t.TempDir(), "partial.json")
	data, _ := json.Marshal(TaskRegistry{Version: "1", Tasks: Default().Tasks[:2]})
	require.NoError(t, os.WriteFile(partial, data, 0644))
	_, err = Load(partial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing tasks")
}

func TestValidateOutput(t *testing.T) {
	credit, _ := Default().Task(TaskCredit)
	employment, _ := Default().Task(TaskIncomeType)

	tests := []struct {
		name           string
		task           Task
		fields         map[string]interface{}
		validateOutput func(t *testing.T, violations []string)
	}{
		{
			name:   "conforming",
			task:   credit,
			fields: map[string]interface{}{"credit_score": 720, "has_defaults": false},
			validateOutput: func(t *testing.T, violations []string) {
				assert.Empty(t, violations)
			},
		},
		{
			name:   "empty output conforms",
			task:   employment,
			fields: map[string]interface{}{},
			validateOutput: func(t *testing.T, violations []string) {
				assert.Empty(t, violations)
			},
		},
		{
			name:   "undeclared field",
			task:   employment,
			fields: map[string]interface{}{"employment": "salaried", "employer": "Infosys"},
			validateOutput: func(t *testing.T, violations []string) {
				require.Len(t, violations, 1)
				assert.Contains(t, violations[0], "employer")
			},
		},
		{
			name:   "wrong type",
			task:   credit,
			fields: map[string]interface{}{"credit_score": []interface{}{720}},
			validateOutput: func(t *testing.T, violations []string) {
				assert.NotEmpty(t, violations)
			},
		},
		{
			name:   "no schema",
			task:   Task{Name: "x"},
			fields: map[string]interface{}{"anything": true},
			validateOutput: func(t *testing.T, violations []string) {
				assert.Nil(t, violations)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateOutput(t, ValidateOutput(tt.task, tt.fields))
		})
	}
}
