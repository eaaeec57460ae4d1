// Package agent defines entrypoints — named, schema-typed capabilities
// an agent exposes over HTTP — and the registry and execution core that
// drive them. Transport concerns (routing, SSE framing, the paywall)
// live in the server package; this package owns the definitions, the
// validation boundary, and the run lifecycle types.
package agent

import (
	"context"
	"net/http"

	"github.com/szaher/agentkit/schema"
)

// Meta describes the agent's identity as shown in the manifest.
type Meta struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon"`
}

// OperationKind distinguishes the two ways an entrypoint is executed.
type OperationKind string

const (
	OpInvoke OperationKind = "invoke"
	OpStream OperationKind = "stream"
)

// Price is an entrypoint's price declaration. Flat applies to both
// operation kinds and wins over the per-kind fields.
type Price struct {
	Flat   string `json:"flat,omitempty" yaml:"flat"`
	Invoke string `json:"invoke,omitempty" yaml:"invoke"`
	Stream string `json:"stream,omitempty" yaml:"stream"`
}

// For returns the declared price for an operation kind, or "" when the
// declaration does not cover it.
func (p *Price) For(kind OperationKind) string {
	if p == nil {
		return ""
	}
	if p.Flat != "" {
		return p.Flat
	}
	switch kind {
	case OpInvoke:
		return p.Invoke
	case OpStream:
		return p.Stream
	}
	return ""
}

// Usage holds token accounting reported by a handler.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ErrorInfo is a machine-readable error carried in results and run-end
// envelopes.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Context carries per-invocation state into a handler. Cancellation is
// signalled through the context.Context passed alongside it, which is
// tied to the client connection.
type Context struct {
	// RunID uniquely identifies this invocation within the process.
	RunID string
	// Key is the entrypoint key being invoked.
	Key string
	// Input is the validated input value.
	Input interface{}
	// Headers holds the inbound request headers, read-only.
	Headers http.Header
}

// Result is what a synchronous handler returns.
type Result struct {
	Output interface{} `json:"output"`
	Usage  *Usage      `json:"usage,omitempty"`
	Model  string      `json:"model,omitempty"`
}

// StreamResult is what a streaming handler returns once it has finished
// emitting. Status defaults to succeeded when empty.
type StreamResult struct {
	Output   interface{}            `json:"output,omitempty"`
	Usage    *Usage                 `json:"usage,omitempty"`
	Model    string                 `json:"model,omitempty"`
	Status   RunStatus              `json:"status,omitempty"`
	Error    *ErrorInfo             `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Handler executes a synchronous entrypoint invocation.
type Handler func(ctx context.Context, rc *Context) (*Result, error)

// Sink delivers push envelopes to the client. Send blocks until the
// envelope has been flushed to the transport, which serialises emission
// to the connection's flow control. Done is closed once the client has
// disconnected; handlers should stop emitting when it fires.
type Sink interface {
	Send(env Envelope) error
	Done() <-chan struct{}
}

// StreamHandler executes a streaming entrypoint invocation, emitting
// envelopes through the sink as it goes.
type StreamHandler func(ctx context.Context, rc *Context, sink Sink) (*StreamResult, error)

// Definition is a registered entrypoint. Input and Output are optional;
// when present they gate the invocation boundary. An entrypoint with
// neither Handler nor Stream is valid to register and fails with
// not_implemented at invocation time.
type Definition struct {
	Key         string
	Description string
	Input       *schema.Schema
	Output      *schema.Schema
	Streaming   bool
	Price       *Price
	// Network overrides the payments configuration's network for this
	// entrypoint only.
	Network  string
	Handler  Handler
	Stream   StreamHandler
	Metadata map[string]interface{}
}

// SupportsStreaming reports whether the stream path can execute this
// entrypoint.
func (d *Definition) SupportsStreaming() bool {
	return d.Streaming || d.Stream != nil
}
