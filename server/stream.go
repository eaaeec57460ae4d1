package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/internal/telemetry"
	"github.com/szaher/agentkit/sse"
)

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	def, err := s.core.Resolve(key)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "unknown entrypoint "+key)
		return
	}

	var req invokeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := s.core.ValidateInput(def, req.Input); err != nil {
		var serr *agent.SchemaError
		if errors.As(err, &serr) {
			writeValidationError(w, http.StatusBadRequest, codeInvalidInput, serr.Issues)
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "input validation failed")
		return
	}

	if !s.enforcePaywall(w, r, def, agent.OpStream) {
		return
	}

	if def.Stream == nil {
		writeError(w, http.StatusBadRequest, codeStreamNotSupported, "entrypoint "+key+" does not support streaming")
		return
	}

	sw, err := sse.NewWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming unsupported by connection")
		return
	}

	runID := agent.NewRunID()
	rc := &agent.Context{
		RunID:   runID,
		Key:     key,
		Input:   req.Input,
		Headers: r.Header,
	}
	logger := telemetry.RunLogger(s.logger, key, string(agent.OpStream), runID)

	sink := &streamSink{
		writer:  sw,
		ctx:     r.Context(),
		runID:   runID,
		key:     key,
		metrics: s.metrics,
	}

	start := agent.Envelope{Kind: agent.KindRunStart, Metadata: def.Metadata}
	if err := sink.write(start); err != nil {
		logger.Error("failed to open stream", "error", err.Error())
		return
	}

	started := time.Now()
	result, err := s.core.ExecuteStream(r.Context(), def, rc, sink)

	end := agent.Envelope{Kind: agent.KindRunEnd, Status: agent.RunSucceeded}
	switch {
	case r.Context().Err() != nil:
		end.Status = agent.RunCancelled
	case err != nil:
		end.Status = agent.RunFailed
		end.Error = sanitizeError(err)
		logger.Error("stream execution failed", "error", err.Error())
	default:
		if result != nil {
			end.Status = result.Status
			end.Output = result.Output
			end.Usage = result.Usage
			end.Model = result.Model
			end.Error = result.Error
			if end.Status == "" {
				end.Status = agent.RunSucceeded
			}
		}
	}

	// The closing envelope is best-effort once the client is gone.
	if werr := sink.write(end); werr != nil && r.Context().Err() == nil {
		logger.Error("failed to close stream", "error", werr.Error())
	}
	s.metrics.RecordInvocation(key, string(agent.OpStream), string(end.Status), time.Since(started))
}

// sanitizeError keeps handler-provided codes and messages but never
// leaks wrapped internals into the wire envelope.
func sanitizeError(err error) *agent.ErrorInfo {
	var aerr *agent.Error
	if errors.As(err, &aerr) {
		code := aerr.Code
		if code == "" {
			code = codeInternal
		}
		return &agent.ErrorInfo{Code: code, Message: aerr.Message}
	}
	return &agent.ErrorInfo{Code: codeInternal, Message: err.Error()}
}

// streamSink stamps and serializes envelopes emitted by a stream
// handler. Writes are mutex-guarded so handlers may emit from multiple
// goroutines; the sequence counter is owned by the sink, handlers never
// set it. The run-start and run-end kinds are reserved for the server.
type streamSink struct {
	mu      sync.Mutex
	writer  *sse.Writer
	ctx     context.Context
	runID   string
	key     string
	seq     int64
	metrics *telemetry.Metrics
}

var errReservedEnvelope = errors.New("run-start and run-end envelopes are emitted by the server")

func (s *streamSink) Send(env agent.Envelope) error {
	if env.Kind == agent.KindRunStart || env.Kind == agent.KindRunEnd {
		return errReservedEnvelope
	}
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return s.write(env)
}

func (s *streamSink) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *streamSink) write(env agent.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env.Stamp(s.runID, s.seq, time.Now())
	if err := s.writer.WriteEvent(string(env.Kind), env); err != nil {
		return err
	}
	s.seq++
	s.metrics.RecordEnvelope(s.key, string(env.Kind))
	return nil
}
