// Package sse implements the Server-Sent-Events wire framing used by
// the streaming entrypoint protocol: a Writer over http.ResponseWriter
// and a Reader for consuming a stream on the client side.
//
// Each frame is "event: <kind>\n" followed by one or more
// "data: <json-fragment>\n" lines and a terminating blank line.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Writer frames events onto an http.ResponseWriter, flushing after
// every event so envelopes reach the client as they are emitted.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares a response for event streaming and sets the SSE
// headers. It fails when the underlying writer cannot flush, which
// must be detected before any body bytes are written.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &Writer{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload. The write is
// flushed before returning, so a nil error means the frame has been
// handed to the transport.
func (s *Writer) WriteEvent(name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
