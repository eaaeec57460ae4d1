package server

import (
	"encoding/json"
	"net/http"

	"github.com/szaher/agentkit/schema"
)

// Stable error codes for programmatic branching by calling agents.
const (
	codeNotFound           = "not_found"
	codeInvalidInput       = "invalid_input"
	codePaymentRequired    = "payment_required"
	codeNotImplemented     = "not_implemented"
	codeStreamNotSupported = "stream_not_supported"
	codeInvalidOutput      = "invalid_output"
	codeInternal           = "internal_error"
)

// errorBody is the uniform error payload: {"error":{"code",...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Issues  []schema.Issue `json:"issues,omitempty"`
	Price   string         `json:"price,omitempty"`
	Network string         `json:"network,omitempty"`
	PayTo   string         `json:"payTo,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeValidationError(w http.ResponseWriter, status int, code string, issues []schema.Issue) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: "schema validation failed",
		Issues:  issues,
	}})
}
