package tool

import (
	"encoding/json"
	"fmt"
)

// ValidateInput checks decoded JSON arguments against the tool's
// parameter schema. The schema is the same JSON-Schema-shaped map the
// tool advertises to the model, so a rejection here means the model
// produced arguments its own tool definition already forbids.
func ValidateInput(schema map[string]interface{}, input json.RawMessage) error {
	var inputMap map[string]interface{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &inputMap); err != nil {
			return fmt.Errorf("invalid JSON input: %w", err)
		}
	}
	return validateObject(schema, inputMap)
}

func validateObject(schema map[string]interface{}, input map[string]interface{}) error {
	for _, field := range requiredFieldNames(schema) {
		if _, exists := input[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	// Unknown fields pass through untouched. The model sometimes adds
	// harmless extras and rejecting them would burn an iteration.
	for name, value := range input {
		spec, defined := properties[name].(map[string]interface{})
		if !defined {
			continue
		}
		expected, ok := spec["type"].(string)
		if !ok {
			continue
		}
		if err := validateType(name, expected, value, spec); err != nil {
			return err
		}
	}
	return nil
}

func validateType(name, expected string, value interface{}, spec map[string]interface{}) error {
	switch expected {
	case "string":
		if _, ok := value.(string); !ok {
			return typeError(name, expected, value)
		}
	case "number", "integer":
		// JSON numbers decode to float64 regardless of schema type.
		if _, ok := value.(float64); !ok {
			return typeError(name, expected, value)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return typeError(name, expected, value)
		}
	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			return typeError(name, expected, value)
		}
		items, ok := spec["items"].(map[string]interface{})
		if !ok {
			return nil
		}
		itemType, ok := items["type"].(string)
		if !ok {
			return nil
		}
		for i, item := range arr {
			if err := validateType(fmt.Sprintf("%s[%d]", name, i), itemType, item, items); err != nil {
				return err
			}
		}
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return typeError(name, expected, value)
		}
		return validateObject(spec, obj)
	}
	return nil
}

// requiredFieldNames tolerates both []string and the []interface{}
// shape that required lists take after a JSON round trip.
func requiredFieldNames(schema map[string]interface{}) []string {
	switch required := schema["required"].(type) {
	case []string:
		return required
	case []interface{}:
		names := make([]string, 0, len(required))
		for _, field := range required {
			if name, ok := field.(string); ok {
				names = append(names, name)
			}
		}
		return names
	default:
		return nil
	}
}

func typeError(name, expected string, value interface{}) error {
	return fmt.Errorf("field '%s' expected %s, got %T", name, expected, value)
}
