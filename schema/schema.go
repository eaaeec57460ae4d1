// Package schema wraps JSON-schema compilation and validation for
// entrypoint inputs and outputs. Schemas are compiled once at
// registration time and validated against raw decoded JSON values at
// the invocation boundary.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema together with its source document.
// The document is kept so the manifest can render it without
// round-tripping through the validator.
type Schema struct {
	doc      map[string]interface{}
	compiled *gojsonschema.Schema
}

// Issue is a single structured validation failure.
type Issue struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ValidationError reports that a value did not conform to a schema.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Description)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Compile builds a Schema from a raw JSON-schema document.
func Compile(doc map[string]interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{doc: doc, compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error. Intended for
// schemas declared as package-level literals.
func MustCompile(doc map[string]interface{}) *Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// FromType reflects a JSON schema from a Go type and compiles it.
// Struct tags (json, jsonschema) control the generated document.
func FromType[T any]() (*Schema, error) {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
	}
	var v T
	reflected := reflector.Reflect(&v)

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode reflected schema: %w", err)
	}
	// The $schema draft marker confuses some downstream consumers of
	// the manifest; strip it, the structure is what matters.
	delete(doc, "$schema")

	return Compile(doc)
}

// Validate checks a decoded JSON value against the schema. A non-nil
// error is either a *ValidationError carrying structured issues, or an
// internal validator failure.
func (s *Schema) Validate(value interface{}) error {
	if s == nil {
		return nil
	}
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]Issue, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		issues = append(issues, Issue{
			Field:       re.Field(),
			Type:        re.Type(),
			Description: re.Description(),
		})
	}
	return &ValidationError{Issues: issues}
}

// Document returns a copy of the source schema document suitable for
// embedding in the manifest. Returns nil for a nil schema or when the
// document cannot be rendered as plain JSON.
func (s *Schema) Document() map[string]interface{} {
	if s == nil || s.doc == nil {
		return nil
	}
	data, err := json.Marshal(s.doc)
	if err != nil {
		return nil
	}
	var copied map[string]interface{}
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil
	}
	return copied
}
