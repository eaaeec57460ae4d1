package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/szaher/agentkit/schema"
)

// TypedHandler is a synchronous handler with concrete input and output
// types. The registry stores the type-erased Definition; the concrete
// types are recovered here, at the registration boundary, and the
// schemas are reflected from them.
type TypedHandler[I, O any] func(ctx context.Context, rc *Context, input I) (O, error)

// NewTyped builds a Definition from a typed handler. The input and
// output schemas are reflected from I and O, so callers get schema
// validation and manifest rendering without writing schema documents
// by hand.
func NewTyped[I, O any](key, description string, fn TypedHandler[I, O]) (*Definition, error) {
	inputSchema, err := schema.FromType[I]()
	if err != nil {
		return nil, fmt.Errorf("entrypoint %q: reflect input schema: %w", key, err)
	}
	outputSchema, err := schema.FromType[O]()
	if err != nil {
		return nil, fmt.Errorf("entrypoint %q: reflect output schema: %w", key, err)
	}

	handler := func(ctx context.Context, rc *Context) (*Result, error) {
		input, err := decodeAs[I](rc.Input)
		if err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		output, err := fn(ctx, rc, input)
		if err != nil {
			return nil, err
		}
		return &Result{Output: output}, nil
	}

	return &Definition{
		Key:         key,
		Description: description,
		Input:       inputSchema,
		Output:      outputSchema,
		Handler:     handler,
	}, nil
}

// decodeAs converts an already-validated JSON value into a concrete
// type. The schema has passed by the time this runs, so failures here
// indicate a schema/type mismatch in the entrypoint itself.
func decodeAs[T any](value interface{}) (T, error) {
	var out T
	data, err := json.Marshal(value)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
