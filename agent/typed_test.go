package agent

import (
	"context"
	"testing"
)

type addInput struct {
	A int `json:"a"`
	B int `json:"b"`
}

type addOutput struct {
	Sum int `json:"sum"`
}

func TestNewTyped(t *testing.T) {
	def, err := NewTyped("add", "Adds two numbers", func(ctx context.Context, rc *Context, in addInput) (addOutput, error) {
		return addOutput{Sum: in.A + in.B}, nil
	})
	if err != nil {
		t.Fatalf("NewTyped failed: %v", err)
	}

	if def.Key != "add" {
		t.Errorf("Key = %q, want %q", def.Key, "add")
	}
	if def.Input == nil || def.Output == nil {
		t.Fatal("expected reflected input and output schemas")
	}

	t.Run("reflected schema validates", func(t *testing.T) {
		if err := def.Input.Validate(map[string]interface{}{"a": 1, "b": 2}); err != nil {
			t.Errorf("Validate of conforming input returned %v", err)
		}
		if err := def.Input.Validate(map[string]interface{}{"a": "one", "b": 2}); err == nil {
			t.Error("expected string a to fail validation")
		}
	})

	t.Run("handler decodes and executes", func(t *testing.T) {
		rc := &Context{RunID: NewRunID(), Key: "add", Input: map[string]interface{}{"a": 19, "b": 23}}
		result, err := def.Handler(context.Background(), rc)
		if err != nil {
			t.Fatalf("Handler failed: %v", err)
		}
		out, ok := result.Output.(addOutput)
		if !ok {
			t.Fatalf("Output is %T, want addOutput", result.Output)
		}
		if out.Sum != 42 {
			t.Errorf("Sum = %d, want 42", out.Sum)
		}
	})

	t.Run("output round-trips through its own schema", func(t *testing.T) {
		// The HTTP layer validates outputs as decoded JSON, so the
		// struct result must conform to its reflected schema.
		if err := def.Output.Validate(addOutput{Sum: 3}); err != nil {
			t.Errorf("Validate of handler output returned %v", err)
		}
	})
}
