// Package schemas validates JSON input documents against JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rootschemas "github.com/jonathan/contact-qr/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError is returned when the input document cannot be read or parsed.
type DocumentError struct {
	Path    string
	Message string
	Cause   error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid document %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid document %s: %s", e.Path, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	contactOnce   sync.Once
	contactSchema *gojsonschema.Schema
	contactErr    error
)

func loadContactSchema() (*gojsonschema.Schema, error) {
	contactOnce.Do(func() {
		contactSchema, contactErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(rootschemas.Contact))
		if contactErr != nil {
			contactErr = &SchemaLoadError{Path: "contact.schema.json", Message: "embedded schema does not compile", Cause: contactErr}
		}
	})
	return contactSchema, contactErr
}

// ValidateContactJSON validates one contact object against the embedded
// contact schema.
func ValidateContactJSON(data []byte) error {
	schema, err := loadContactSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &DocumentError{Path: "(input)", Message: "not valid JSON", Cause: err}
	}
	return fromResult(result)
}

// ValidateContactFile reads path and validates it with ValidateContactJSON.
func ValidateContactFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &DocumentError{Path: path, Message: "cannot read file", Cause: err}
	}
	if err := ValidateContactJSON(data); err != nil {
		if docErr, ok := err.(*DocumentError); ok {
			docErr.Path = path
		}
		return err
	}
	return nil
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return fromResult(result)
}

func fromResult(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
