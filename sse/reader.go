package sse

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Event is one parsed SSE frame.
type Event struct {
	// Name is the event field of the frame.
	Name string
	// Data is the frame's data payload. Multi-line data fields are
	// concatenated with newlines per the SSE grammar.
	Data []byte
}

// JSON decodes the event payload into v.
func (e *Event) JSON(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Value decodes the payload as arbitrary JSON, falling back to the raw
// string when the payload is not valid JSON.
func (e *Event) Value() interface{} {
	var v interface{}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return string(e.Data)
	}
	return v
}

// Reader incrementally parses an SSE stream. It buffers partial lines
// across chunk boundaries, accumulates event/data fields, and flushes
// an Event at each blank-line delimiter. Trailing unflushed content at
// stream end is flushed once more, best-effort.
type Reader struct {
	r    io.Reader
	buf  []byte
	read []byte

	name string
	data []string
	done bool
}

// NewReader wraps an io.Reader producing SSE frames.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, read: make([]byte, 4096)}
}

// Next returns the next complete event, or io.EOF once the stream is
// exhausted and any trailing buffer content has been flushed.
func (r *Reader) Next() (*Event, error) {
	for {
		// Drain complete lines already buffered.
		for {
			idx := bytes.IndexByte(r.buf, '\n')
			if idx < 0 {
				break
			}
			line := strings.TrimSuffix(string(r.buf[:idx]), "\r")
			r.buf = r.buf[idx+1:]
			if ev := r.consumeLine(line); ev != nil {
				return ev, nil
			}
		}

		if r.done {
			if ev := r.flushTrailing(); ev != nil {
				return ev, nil
			}
			return nil, io.EOF
		}

		n, err := r.r.Read(r.read)
		if n > 0 {
			r.buf = append(r.buf, r.read[:n]...)
		}
		if err == io.EOF {
			r.done = true
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// consumeLine folds one line into the pending frame, returning the
// completed Event on a blank-line delimiter.
func (r *Reader) consumeLine(line string) *Event {
	switch {
	case line == "":
		if r.name == "" && len(r.data) == 0 {
			return nil
		}
		ev := &Event{Name: r.name, Data: []byte(strings.Join(r.data, "\n"))}
		r.name = ""
		r.data = nil
		return ev
	case strings.HasPrefix(line, "event:"):
		r.name = strings.TrimPrefix(strings.TrimPrefix(line, "event:"), " ")
	case strings.HasPrefix(line, "data:"):
		r.data = append(r.data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
	}
	// Comment lines and unknown fields are ignored.
	return nil
}

// flushTrailing emits whatever is left after EOF: an unterminated
// frame, or raw buffer content that never formed a field line.
func (r *Reader) flushTrailing() *Event {
	if len(r.buf) > 0 {
		line := strings.TrimSuffix(string(r.buf), "\r")
		r.buf = nil
		r.consumeLine(line)
	}
	if r.name == "" && len(r.data) == 0 {
		return nil
	}
	ev := &Event{Name: r.name, Data: []byte(strings.Join(r.data, "\n"))}
	r.name = ""
	r.data = nil
	return ev
}
