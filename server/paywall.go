package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/payments"
)

// PaymentHeader carries the x402 payment proof on a request.
const PaymentHeader = "X-Payment"

// Verifier checks a payment proof against a resolved requirement.
// The reference implementation calls out to the facilitator service;
// verification is awaited before the entrypoint executes.
type Verifier interface {
	Verify(ctx context.Context, proof string, req payments.Requirement) (bool, error)
}

// FacilitatorClient verifies payment proofs against an x402
// facilitator's /verify endpoint.
type FacilitatorClient struct {
	url        string
	httpClient *http.Client
}

// NewFacilitatorClient creates a verifier for the given facilitator URL.
func NewFacilitatorClient(url string) *FacilitatorClient {
	return &FacilitatorClient{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Verify posts the proof and requirement to the facilitator and
// returns its validity verdict.
func (c *FacilitatorClient) Verify(ctx context.Context, proof string, req payments.Requirement) (bool, error) {
	body, err := json.Marshal(map[string]interface{}{
		"payment": proof,
		"requirement": map[string]string{
			"payTo":   req.PayTo,
			"price":   req.Price,
			"network": req.Network,
		},
	})
	if err != nil {
		return false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/verify", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("facilitator verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("facilitator verify: HTTP %d", resp.StatusCode)
	}

	var verdict struct {
		IsValid bool `json:"isValid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return false, fmt.Errorf("facilitator verify: %w", err)
	}
	return verdict.IsValid, nil
}

// enforcePaywall gates one request. It returns true when execution may
// proceed; otherwise it has already written the 402 response. The gate
// runs identically ahead of the invoke and stream paths, on the
// opening request only.
func (s *Server) enforcePaywall(w http.ResponseWriter, r *http.Request, def *agent.Definition, kind agent.OperationKind) bool {
	req := payments.ResolveRequirement(def, kind, s.payments)
	if !req.Required {
		return true
	}

	if proof := r.Header.Get(PaymentHeader); proof != "" && s.verifier != nil {
		ok, err := s.verifier.Verify(r.Context(), proof, req)
		if err != nil {
			s.logger.Warn("payment verification failed", "entrypoint", def.Key, "error", err)
		}
		if ok {
			return true
		}
	}

	s.metrics.RecordPaymentRejected(def.Key, string(kind))
	writePaymentRequired(w, req)
	return false
}

// writePaymentRequired responds 402 with machine-readable payment
// requirements in both headers and body.
func writePaymentRequired(w http.ResponseWriter, req payments.Requirement) {
	w.Header().Set("X-Price", req.Price)
	w.Header().Set("X-Network", req.Network)
	w.Header().Set("X-Pay-To", req.PayTo)
	if req.FacilitatorURL != "" {
		w.Header().Set("X-Facilitator", req.FacilitatorURL)
	}
	writeJSON(w, http.StatusPaymentRequired, errorBody{Error: errorDetail{
		Code:    codePaymentRequired,
		Price:   req.Price,
		Network: req.Network,
		PayTo:   req.PayTo,
	}})
}
