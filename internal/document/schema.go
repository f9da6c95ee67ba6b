package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is passed to the provider as a structured output constraint
// and used locally to gate drafts; local failures downgrade to findings, they
// never reject a parseable draft.
func BuildInvoiceJSONSchema() map[string]any {
	partyProps := map[string]any{
		"name":       map[string]any{"type": "string"},
		"legal_name": map[string]any{"type": "string"},
		"tax_id":     map[string]any{"type": "string"},
		"address":    map[string]any{"type": "string"},
		"phone":      map[string]any{"type": "string"},
		"email":      map[string]any{"type": "string"},
	}
	hintProps := map[string]any{
		"id":       map[string]any{"type": "string"},
		"name":     map[string]any{"type": "string"},
		"document": map[string]any{"type": "string"},
	}
	line := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 1},
			"code":       map[string]any{"type": "string"},
			"unit":       map[string]any{"type": "string"},
			"quantity":   numberProp(),
			"unit_price": numberProp(),
			"discount":   numberProp(),
			"tax_rate":   numberProp(),
			"subtotal":   numberProp(),
			"category":   map[string]any{"type": "object", "properties": hintProps},
			"supplier":   map[string]any{"type": "object", "properties": hintProps},
		},
		"required": []string{"name", "quantity", "unit_price", "subtotal"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"supplier": map[string]any{"type": "object", "properties": partyProps},
			"buyer":    map[string]any{"type": "object", "properties": partyProps},
			"invoice": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"number":     map[string]any{"type": "string"},
					"issue_date": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					"due_date":   map[string]any{"type": "string"},
					"currency":   map[string]any{"type": "string"},
				},
			},
			"lines": map[string]any{"type": "array", "items": line},
			"totals": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"subtotal":        numberProp(),
					"tax":             numberProp(),
					"discount":        numberProp(),
					"other_charges":   numberProp(),
					"withheld_vat":    numberProp(),
					"withheld_income": numberProp(),
					"total":           numberProp(),
				},
				"required": []string{"subtotal", "tax", "total"},
			},
		},
		"required": []string{"lines", "totals"},
	}
}

// BuildAppointmentJSONSchema constrains the conversational appointment
// extraction output.
func BuildAppointmentJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"customer":    map[string]any{"type": "string"},
			"customer_id": map[string]any{"type": "string"},
			"vehicle": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"make":  map[string]any{"type": "string"},
					"model": map[string]any{"type": "string"},
					"plate": map[string]any{"type": "string"},
				},
			},
			"vehicle_id":   map[string]any{"type": "string"},
			"date":         map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"time":         map[string]any{"type": "string", "pattern": `^([01]?[0-9]|2[0-3]):[0-5][0-9]$`},
			"service":      map[string]any{"type": "string"},
			"problem":      map[string]any{"type": "string"},
			"service_type": map[string]any{"type": "string"},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"normal", "alta", "urgente"},
			},
			"duration_minutes":   map[string]any{"type": "integer", "minimum": 0},
			"confidence":         map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"missing_fields":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"suggestion":         map[string]any{"type": "string"},
			"follow_up_question": map[string]any{"type": "string"},
		},
		"required": []string{"missing_fields"},
	}
}

func numberProp() map[string]any {
	// Providers emit money as numbers or formatted strings; accept both and
	// let the Amount decoder normalize.
	return map[string]any{"type": []string{"number", "string"}}
}

// ValidateAgainstSchema validates "data" against "schemaMap".
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
