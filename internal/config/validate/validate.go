package validate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/innobuild/innobuild/internal/config/schema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const (
	configSchemaName   = "innobuild-config.schema.json"
	settingsSchemaName = "project-settings.schema.json"
)

// ValidateAgainstSchema compiles the given schema bytes and runs it against
// the JSON in data. The name only identifies the schema in errors.
func ValidateAgainstSchema(name string, schemaBytes, data []byte) error {
	comp := jsonschema.NewCompiler()
	if err := comp.AddResource(name, bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("loading schema %q: %w", name, err)
	}
	sch, err := comp.Compile(name)
	if err != nil {
		return fmt.Errorf("compiling schema %q: %w", name, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON for %q: %w", name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation against %q failed: %w", name, err)
	}
	return nil
}

// ValidateConfigJSON runs the global config schema against data
func ValidateConfigJSON(data []byte) error {
	return ValidateAgainstSchema(configSchemaName, schema.ConfigSchema, data)
}

// ValidateProjectSettingsYAML converts a project settings document to JSON
// and validates it.
func ValidateProjectSettingsYAML(data []byte) error {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting project settings to JSON: %w", err)
	}
	return ValidateAgainstSchema(settingsSchemaName, schema.ProjectSettingsSchema, jsonData)
}
