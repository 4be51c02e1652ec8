package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schemas for the JSON structures the local LLM is asked to produce. Insight
// output that fails validation is treated the same as a generation failure:
// the caller substitutes its fixed fallback structure.

const customerInsightsSchema = `{
	"type": "object",
	"required": ["primary_interests", "price_sensitivity"],
	"properties": {
		"primary_interests": {"type": "array", "items": {"type": "string"}},
		"secondary_interests": {"type": "array", "items": {"type": "string"}},
		"price_sensitivity": {"type": "string", "enum": ["low", "medium", "high"]},
		"likely_next_purchase": {"type": "array", "items": {"type": "string"}},
		"personalization_notes": {"type": "string"}
	}
}`

const productInsightsSchema = `{
	"type": "object",
	"required": ["target_demographics", "key_selling_points"],
	"properties": {
		"target_demographics": {"type": "array", "items": {"type": "string"}},
		"key_selling_points": {"type": "array", "items": {"type": "string"}},
		"suggested_customer_segments": {"type": "array", "items": {"type": "string"}},
		"product_insights": {"type": "string"}
	}
}`

// SchemaValidator validates LLM-produced JSON documents.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// ValidationResult reports schema validation outcome.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

func NewSchemaValidator() (*SchemaValidator, error) {
	sources := map[string]string{
		"customer-insights": customerInsightsSchema,
		"product-insights":  productInsightsSchema,
	}

	sv := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema)}

	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		sv.schemas[name] = schema
	}

	return sv, nil
}

// ValidateCustomerInsights validates raw JSON against the customer insights schema.
func (sv *SchemaValidator) ValidateCustomerInsights(document string) *ValidationResult {
	return sv.validate("customer-insights", document)
}

// ValidateProductInsights validates raw JSON against the product insights schema.
func (sv *SchemaValidator) ValidateProductInsights(document string) *ValidationResult {
	return sv.validate("product-insights", document)
}

func (sv *SchemaValidator) validate(name, document string) *ValidationResult {
	schema, ok := sv.schemas[name]
	if !ok {
		return &ValidationResult{Valid: false, Errors: []string{fmt.Sprintf("unknown schema: %s", name)}}
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		// Not even parseable JSON
		return &ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errors := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}

	return &ValidationResult{Valid: false, Errors: errors}
}

// ExtractJSON trims surrounding prose from an LLM response, returning the
// first top-level JSON object. LLMs frequently wrap JSON in markdown fences
// or lead-in sentences.
func ExtractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return response
	}
	return response[start : end+1]
}
