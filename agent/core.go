package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/szaher/agentkit/schema"
)

var (
	// ErrNotImplemented is returned when an entrypoint has no handler
	// for the requested operation kind.
	ErrNotImplemented = errors.New("entrypoint has no handler")
	// ErrStreamNotSupported is returned when the stream path is used on
	// an entrypoint without a stream handler. Streaming is never
	// silently downgraded to a synchronous call.
	ErrStreamNotSupported = errors.New("entrypoint does not support streaming")
)

// SchemaError reports that an entrypoint's input or output failed its
// declared schema. Kind is "input" for caller mistakes and "output"
// for server-side contract violations.
type SchemaError struct {
	Kind   string
	Issues []schema.Issue
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema validation failed (%d issues)", e.Kind, len(e.Issues))
}

// Error is a handler failure carrying a stable code for programmatic
// branching, and optionally its own HTTP status.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// NewRunID generates a run identifier: lexicographically sortable,
// monotonic within a process, unique across restarts.
func NewRunID() string {
	return ulid.Make().String()
}

// Core executes entrypoints against a registry: it owns the schema
// validation boundary and the panic recovery around handler calls.
type Core struct {
	meta     Meta
	registry *Registry
	logger   *slog.Logger
}

// CoreOption configures a Core.
type CoreOption func(*Core)

// WithLogger sets the logger used for handler failures.
func WithLogger(logger *slog.Logger) CoreOption {
	return func(c *Core) { c.logger = logger }
}

// NewCore creates an execution core with an empty registry.
func NewCore(meta Meta, opts ...CoreOption) *Core {
	c := &Core{
		meta:     meta,
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Meta returns the agent identity the core was created with.
func (c *Core) Meta() Meta { return c.meta }

// Registry returns the core's entrypoint registry.
func (c *Core) Registry() *Registry { return c.registry }

// List returns all registered entrypoints in registration order.
func (c *Core) List() []*Definition { return c.registry.List() }

// Resolve looks up an entrypoint, returning ErrNotFound for unknown keys.
func (c *Core) Resolve(key string) (*Definition, error) {
	return c.registry.Get(key)
}

// ValidateInput checks a raw input value against the entrypoint's
// declared input schema, if any. Failures are *SchemaError with
// Kind "input".
func (c *Core) ValidateInput(def *Definition, input interface{}) error {
	if def.Input == nil {
		return nil
	}
	if err := def.Input.Validate(input); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return &SchemaError{Kind: "input", Issues: verr.Issues}
		}
		return err
	}
	return nil
}

// Execute runs the synchronous handler for a resolved definition. The
// context carries cancellation tied to the client connection. Output
// schema violations come back as *SchemaError with Kind "output":
// a server-side contract bug, always logged.
func (c *Core) Execute(ctx context.Context, def *Definition, rc *Context) (result *Result, err error) {
	if def.Handler == nil {
		return nil, fmt.Errorf("%w: %q (invoke)", ErrNotImplemented, def.Key)
	}

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("entrypoint handler panicked", "key", def.Key, "run_id", rc.RunID, "panic", rec)
			result = nil
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	result, err = def.Handler(ctx, rc)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &Result{}
	}

	if def.Output != nil {
		if verr := def.Output.Validate(result.Output); verr != nil {
			var sve *schema.ValidationError
			if errors.As(verr, &sve) {
				c.logger.Error("entrypoint output violates declared schema", "key", def.Key, "run_id", rc.RunID, "issues", len(sve.Issues))
				return nil, &SchemaError{Kind: "output", Issues: sve.Issues}
			}
			return nil, verr
		}
	}
	return result, nil
}

// ExecuteStream runs the stream handler for a resolved definition,
// emitting through the sink. The terminal run-end envelope is the
// transport's responsibility; this only produces the StreamResult.
func (c *Core) ExecuteStream(ctx context.Context, def *Definition, rc *Context, sink Sink) (result *StreamResult, err error) {
	if def.Stream == nil {
		return nil, fmt.Errorf("%w: %q", ErrStreamNotSupported, def.Key)
	}

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("entrypoint stream handler panicked", "key", def.Key, "run_id", rc.RunID, "panic", rec)
			result = nil
			err = fmt.Errorf("stream handler panic: %v", rec)
		}
	}()

	result, err = def.Stream(ctx, rc, sink)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &StreamResult{}
	}
	if result.Status == "" {
		result.Status = RunSucceeded
	}
	return result, nil
}

// Invoke resolves, validates and executes an entrypoint in one call.
// It is the library-level equivalent of the HTTP invoke path.
func (c *Core) Invoke(ctx context.Context, key string, input interface{}, headers http.Header) (*Result, error) {
	def, err := c.Resolve(key)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateInput(def, input); err != nil {
		return nil, err
	}
	rc := &Context{RunID: NewRunID(), Key: key, Input: input, Headers: headers}
	return c.Execute(ctx, def, rc)
}
