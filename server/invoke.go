package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/internal/telemetry"
)

// invokeRequest is the body of POST /entrypoints/{key}/invoke and
// /stream. A body that fails to decode is treated as a nil input, so
// entrypoints with a declared input schema reject it as invalid_input
// and schema-less entrypoints receive nothing.
type invokeRequest struct {
	Input interface{} `json:"input"`
}

// invokeResponse is the success payload of the invoke path.
type invokeResponse struct {
	Status string           `json:"status"`
	Output interface{}      `json:"output"`
	Usage  *agent.Usage     `json:"usage,omitempty"`
	Model  string           `json:"model,omitempty"`
	Error  *agent.ErrorInfo `json:"error,omitempty"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
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

	if !s.enforcePaywall(w, r, def, agent.OpInvoke) {
		return
	}

	if def.Handler == nil {
		writeError(w, http.StatusNotImplemented, codeNotImplemented, "entrypoint "+key+" has no invoke handler")
		return
	}

	rc := &agent.Context{
		RunID:   agent.NewRunID(),
		Key:     key,
		Input:   req.Input,
		Headers: r.Header,
	}
	logger := telemetry.RunLogger(s.logger, key, string(agent.OpInvoke), rc.RunID)
	started := time.Now()

	result, err := s.core.Execute(r.Context(), def, rc)
	if err != nil {
		s.metrics.RecordInvocation(key, string(agent.OpInvoke), "failed", time.Since(started))
		s.writeExecutionError(w, logger, err)
		return
	}

	s.metrics.RecordInvocation(key, string(agent.OpInvoke), "succeeded", time.Since(started))
	writeJSON(w, http.StatusOK, invokeResponse{
		Status: string(agent.RunSucceeded),
		Output: result.Output,
		Usage:  result.Usage,
		Model:  result.Model,
	})
}

// writeExecutionError maps execution failures onto the error taxonomy.
// Handler-thrown errors surface as {status:"failed"} with the error's
// own status code when it carries one; output schema violations are a
// server-side contract bug, reported as invalid_output.
func (s *Server) writeExecutionError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var serr *agent.SchemaError
	if errors.As(err, &serr) && serr.Kind == "output" {
		logger.Error("handler output violates declared schema", "issues", len(serr.Issues))
		writeValidationError(w, http.StatusInternalServerError, codeInvalidOutput, serr.Issues)
		return
	}

	status := http.StatusInternalServerError
	code := codeInternal
	message := err.Error()
	var aerr *agent.Error
	if errors.As(err, &aerr) {
		if aerr.Status != 0 {
			status = aerr.Status
		}
		if aerr.Code != "" {
			code = aerr.Code
		}
		message = aerr.Message
	}

	logger.Error("entrypoint execution failed", "code", code, "error", err.Error())
	writeJSON(w, status, invokeResponse{
		Status: string(agent.RunFailed),
		Error:  &agent.ErrorInfo{Code: code, Message: message},
	})
}
