package tool

import (
	"encoding/json"
	"testing"
)

func TestValidateInput(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"experiment_name": map[string]interface{}{
				"type": "string",
			},
			"days": map[string]interface{}{
				"type": "number",
			},
			"metrics": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
			"options": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"verbose": map[string]interface{}{
						"type": "boolean",
					},
				},
			},
		},
		"required": []string{"experiment_name"},
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "Valid input",
			input:   `{"experiment_name": "checkout_v2", "days": 7, "metrics": ["orders"]}`,
			wantErr: false,
		},
		{
			name:    "Missing required field",
			input:   `{"days": 7}`,
			wantErr: true,
		},
		{
			name:    "Invalid type (string vs number)",
			input:   `{"experiment_name": "checkout_v2", "days": "seven"}`,
			wantErr: true,
		},
		{
			name:    "Invalid array item type",
			input:   `{"experiment_name": "checkout_v2", "metrics": [123]}`,
			wantErr: true,
		},
		{
			name:    "Invalid nested object field",
			input:   `{"experiment_name": "checkout_v2", "options": {"verbose": "yes"}}`,
			wantErr: true,
		},
		{
			name:    "Valid nested object",
			input:   `{"experiment_name": "checkout_v2", "options": {"verbose": true}}`,
			wantErr: false,
		},
		{
			name:    "Extra fields (allowed)",
			input:   `{"experiment_name": "checkout_v2", "cohort": "us"}`,
			wantErr: false,
		},
		{
			name:    "Empty input misses required field",
			input:   ``,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(schema, json.RawMessage(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateInputRequiredSurvivesRoundTrip(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"metric_name": map[string]interface{}{
				"type": "string",
			},
		},
		"required": []string{"metric_name"},
	}

	// A marshal/unmarshal cycle turns the required list into
	// []interface{}, the shape schemas have after crossing the wire.
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var roundTripped map[string]interface{}
	if err := json.Unmarshal(raw, &roundTripped); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	if err := ValidateInput(roundTripped, json.RawMessage(`{}`)); err == nil {
		t.Error("ValidateInput() expected missing required field error, got nil")
	}
	if err := ValidateInput(roundTripped, json.RawMessage(`{"metric_name": "orders"}`)); err != nil {
		t.Errorf("ValidateInput() unexpected error = %v", err)
	}
}

func TestValidateInputNoRequirements(t *testing.T) {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}

	if err := ValidateInput(schema, json.RawMessage(``)); err != nil {
		t.Errorf("ValidateInput() unexpected error for empty input = %v", err)
	}
	if err := ValidateInput(schema, json.RawMessage(`{}`)); err != nil {
		t.Errorf("ValidateInput() unexpected error for empty object = %v", err)
	}
}
