package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/szaher/agentkit/schema"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	return NewCore(
		Meta{Name: "test-agent", Version: "0.0.1"},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestCoreInvoke(t *testing.T) {
	core := newTestCore(t)
	def := &Definition{
		Key: "greet",
		Input: schema.MustCompile(map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"name"},
		}),
		Handler: func(ctx context.Context, rc *Context) (*Result, error) {
			name := rc.Input.(map[string]interface{})["name"].(string)
			return &Result{Output: "hello " + name}, nil
		},
	}
	if err := core.Registry().Add(def); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		result, err := core.Invoke(context.Background(), "greet", map[string]interface{}{"name": "ada"}, nil)
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if got, want := result.Output, "hello ada"; got != want {
			t.Errorf("Output = %v, want %v", got, want)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := core.Invoke(context.Background(), "missing", nil, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Invoke(missing) = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid input never reaches the handler", func(t *testing.T) {
		_, err := core.Invoke(context.Background(), "greet", map[string]interface{}{}, nil)
		var serr *SchemaError
		if !errors.As(err, &serr) {
			t.Fatalf("Invoke = %v, want *SchemaError", err)
		}
		if serr.Kind != "input" {
			t.Errorf("SchemaError.Kind = %q, want %q", serr.Kind, "input")
		}
	})
}

func TestCoreExecuteWithoutHandler(t *testing.T) {
	core := newTestCore(t)
	def := &Definition{Key: "stub"}
	_, err := core.Execute(context.Background(), def, &Context{RunID: NewRunID(), Key: "stub"})
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Execute = %v, want ErrNotImplemented", err)
	}
}

func TestCoreRecoversHandlerPanic(t *testing.T) {
	core := newTestCore(t)
	def := &Definition{
		Key: "boom",
		Handler: func(ctx context.Context, rc *Context) (*Result, error) {
			panic("kaboom")
		},
	}
	result, err := core.Execute(context.Background(), def, &Context{RunID: NewRunID(), Key: "boom"})
	if err == nil {
		t.Fatal("expected an error from a panicking handler")
	}
	if result != nil {
		t.Errorf("result = %v, want nil after panic", result)
	}
}

func TestCoreValidatesOutput(t *testing.T) {
	core := newTestCore(t)
	def := &Definition{
		Key: "broken",
		Output: schema.MustCompile(map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"answer": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"answer"},
		}),
		Handler: func(ctx context.Context, rc *Context) (*Result, error) {
			return &Result{Output: map[string]interface{}{"wrong": true}}, nil
		},
	}

	_, err := core.Execute(context.Background(), def, &Context{RunID: NewRunID(), Key: "broken"})
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("Execute = %v, want *SchemaError", err)
	}
	if serr.Kind != "output" {
		t.Errorf("SchemaError.Kind = %q, want %q", serr.Kind, "output")
	}
}

type sinkFunc func(env Envelope) error

func (f sinkFunc) Send(env Envelope) error { return f(env) }
func (f sinkFunc) Done() <-chan struct{}   { return nil }

func TestCoreExecuteStream(t *testing.T) {
	core := newTestCore(t)

	t.Run("emits and defaults status", func(t *testing.T) {
		def := &Definition{
			Key:       "counter",
			Streaming: true,
			Stream: func(ctx context.Context, rc *Context, sink Sink) (*StreamResult, error) {
				for _, s := range []string{"one", "two"} {
					if err := sink.Send(DeltaEnvelope(s)); err != nil {
						return nil, err
					}
				}
				return &StreamResult{Output: "done"}, nil
			},
		}

		var seen []string
		sink := sinkFunc(func(env Envelope) error {
			seen = append(seen, env.Delta)
			return nil
		})

		result, err := core.ExecuteStream(context.Background(), def, &Context{RunID: NewRunID(), Key: "counter"}, sink)
		if err != nil {
			t.Fatalf("ExecuteStream failed: %v", err)
		}
		if result.Status != RunSucceeded {
			t.Errorf("Status = %q, want %q", result.Status, RunSucceeded)
		}
		if len(seen) != 2 || seen[0] != "one" || seen[1] != "two" {
			t.Errorf("emitted deltas = %v, want [one two]", seen)
		}
	})

	t.Run("no stream handler", func(t *testing.T) {
		def := &Definition{Key: "sync-only", Handler: func(ctx context.Context, rc *Context) (*Result, error) {
			return &Result{}, nil
		}}
		_, err := core.ExecuteStream(context.Background(), def, &Context{RunID: NewRunID(), Key: "sync-only"}, sinkFunc(func(Envelope) error { return nil }))
		if !errors.Is(err, ErrStreamNotSupported) {
			t.Errorf("ExecuteStream = %v, want ErrStreamNotSupported", err)
		}
	})

	t.Run("recovers stream panic", func(t *testing.T) {
		def := &Definition{Key: "panicky", Stream: func(ctx context.Context, rc *Context, sink Sink) (*StreamResult, error) {
			panic("stream kaboom")
		}}
		_, err := core.ExecuteStream(context.Background(), def, &Context{RunID: NewRunID(), Key: "panicky"}, sinkFunc(func(Envelope) error { return nil }))
		if err == nil {
			t.Fatal("expected an error from a panicking stream handler")
		}
	})
}

func TestNewRunIDIsUniqueAndSortable(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if a == b {
		t.Errorf("two run IDs collided: %q", a)
	}
	if len(a) != 26 {
		t.Errorf("run ID length = %d, want 26", len(a))
	}
	if a > b {
		t.Errorf("run IDs not monotonic: %q > %q", a, b)
	}
}
