package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the field errors into one line for job failure details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func (r *ValidationResult) add(field, code, format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func newResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// SchemaValidator validates documents against one compiled JSON schema.
type SchemaValidator struct {
	schema *gojsonschema.Schema
}

// NewSchemaValidator compiles schema. An empty schema accepts everything.
func NewSchemaValidator(schema json.RawMessage) (*SchemaValidator, error) {
	if len(schema) == 0 {
		return &SchemaValidator{}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &SchemaValidator{schema: compiled}, nil
}

// Validate checks a raw JSON document such as a job's variables.
func (v *SchemaValidator) Validate(document []byte) *ValidationResult {
	result := newResult()
	if v == nil || v.schema == nil {
		return result
	}

	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		result.add("(root)", "INVALID_JSON", "%v", err)
		return result
	}
	for _, e := range res.Errors() {
		result.add(e.Field(), strings.ToUpper(e.Type()), "%s", e.Description())
	}
	return result
}
