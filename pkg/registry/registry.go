// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads a task catalog from a JSON file. The result is not validated.
func LoadRegistry(path string) (*TaskRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TaskRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Load returns the built-in catalog when path is empty, otherwise the file at
// path. Either way the catalog is validated before it is returned.
func Load(path string) (*TaskRegistry, error) {
	reg := Default()
	if path != "" {
		loaded, err := LoadRegistry(path)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// Save writes the catalog as indented JSON, creating the parent directory.
func Save(reg *TaskRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Task looks up a task by name.
func (r *TaskRegistry) Task(name string) (Task, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// Validate checks that every task the engine runs is present exactly once,
// references the text variable and declares its fields.
func (r *TaskRegistry) Validate() error {
	if len(r.Tasks) == 0 {
		return fmt.Errorf("registry contains no tasks")
	}

	seen := make(map[string]bool, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task missing required field: name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate task name: %s", t.Name)
		}
		seen[t.Name] = true

		if strings.TrimSpace(t.Template) == "" {
			return fmt.Errorf("task %s missing required field: template", t.Name)
		}
		if !strings.Contains(t.Template, "."+TemplateVariable) {
			return fmt.Errorf("task %s template does not reference {{.%s}}", t.Name, TemplateVariable)
		}
		if len(t.Fields) == 0 {
			return fmt.Errorf("task %s declares no fields", t.Name)
		}
	}

	var missing []string
	for _, name := range TaskNames {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("registry is missing tasks: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Declares reports whether field is one of the task's declared fields.
func (t Task) Declares(field string) bool {
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ValidateOutput checks parsed oracle output against the task's output
// schema and returns the violations, sorted. A task without a schema, or a
// schema that cannot be compiled, reports nothing.
func ValidateOutput(task Task, fields map[string]interface{}) []string {
	if len(task.OutputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(task.OutputSchema)
	documentLoader := gojsonschema.NewGoLoader(fields)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	sort.Strings(violations)
	return violations
}
