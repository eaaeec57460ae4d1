package schema

import (
	"errors"
	"testing"
)

func TestCompileAndValidate(t *testing.T) {
	s, err := Compile(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text":   map[string]interface{}{"type": "string"},
			"repeat": map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []interface{}{"text"},
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	t.Run("valid input passes", func(t *testing.T) {
		if err := s.Validate(map[string]interface{}{"text": "hi", "repeat": 2}); err != nil {
			t.Errorf("Validate returned %v, want nil", err)
		}
	})

	t.Run("missing required field fails with issues", func(t *testing.T) {
		err := s.Validate(map[string]interface{}{"repeat": 2})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate returned %T, want *ValidationError", err)
		}
		if len(verr.Issues) == 0 {
			t.Fatal("expected at least one issue")
		}
		if verr.Issues[0].Type != "required" {
			t.Errorf("issue type = %q, want %q", verr.Issues[0].Type, "required")
		}
	})

	t.Run("wrong type fails", func(t *testing.T) {
		err := s.Validate(map[string]interface{}{"text": 42})
		if err == nil {
			t.Fatal("expected a validation error for non-string text")
		}
	})

	t.Run("nil value fails when schema requires object", func(t *testing.T) {
		if err := s.Validate(nil); err == nil {
			t.Fatal("expected a validation error for nil input")
		}
	})
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{
		"type": []interface{}{map[string]interface{}{}},
	})
	if err == nil {
		t.Fatal("expected Compile to reject a malformed schema")
	}
}

type echoInput struct {
	Text   string `json:"text"`
	Repeat int    `json:"repeat,omitempty"`
}

func TestFromType(t *testing.T) {
	s, err := FromType[echoInput]()
	if err != nil {
		t.Fatalf("FromType failed: %v", err)
	}

	doc := s.Document()
	if doc["type"] != "object" {
		t.Errorf("reflected schema type = %v, want object", doc["type"])
	}
	props, ok := doc["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("reflected schema has no properties: %v", doc)
	}
	if _, ok := props["text"]; !ok {
		t.Error("reflected schema missing text property")
	}

	if err := s.Validate(map[string]interface{}{"text": "hi"}); err != nil {
		t.Errorf("Validate of conforming value returned %v", err)
	}
	if err := s.Validate(map[string]interface{}{"repeat": 1}); err == nil {
		t.Error("expected missing required text to fail validation")
	}
}

func TestDocumentIsACopy(t *testing.T) {
	s := MustCompile(map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"a": map[string]interface{}{"type": "string"}},
	})

	doc := s.Document()
	doc["type"] = "string"
	props := doc["properties"].(map[string]interface{})
	props["b"] = map[string]interface{}{"type": "number"}

	fresh := s.Document()
	if fresh["type"] != "object" {
		t.Errorf("mutating a returned document changed the schema: type = %v", fresh["type"])
	}
	if _, ok := fresh["properties"].(map[string]interface{})["b"]; ok {
		t.Error("mutating a returned document leaked into the schema")
	}
}

func TestDocumentOfNilSchema(t *testing.T) {
	var s *Schema
	if got := s.Document(); got != nil {
		t.Errorf("nil schema Document() = %v, want nil", got)
	}
}
