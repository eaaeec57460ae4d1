// Package server is the HTTP runtime for an agent: it mounts the
// discovery, invoke and stream routes over an entrypoint registry and
// enforces the x402 paywall ahead of both execution paths.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/identity"
	"github.com/szaher/agentkit/internal/telemetry"
	"github.com/szaher/agentkit/payments"
)

// Server mounts an agent's entrypoints on an HTTP mux.
type Server struct {
	core     *agent.Core
	payments *payments.Config
	trust    *identity.TrustConfig
	verifier Verifier
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	mux      *http.ServeMux
	server   *http.Server
}

// Option configures the Server.
type Option func(*Server)

// WithPayments enables the paywall with the given configuration. The
// configuration is validated per entrypoint at registration time.
func WithPayments(cfg *payments.Config) Option {
	return func(s *Server) { s.payments = cfg }
}

// WithTrust attaches trust metadata to the agent card.
func WithTrust(trust *identity.TrustConfig) Option {
	return func(s *Server) { s.trust = trust }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVerifier overrides the facilitator client used to verify payment
// proofs. Mostly useful in tests.
func WithVerifier(v Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

// New creates a server for the given agent identity.
func New(meta agent.Meta, opts ...Option) *Server {
	s := &Server{
		logger:  slog.Default(),
		metrics: telemetry.NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.core = agent.NewCore(meta, agent.WithLogger(s.logger))

	if s.payments != nil && s.verifier == nil {
		s.verifier = NewFacilitatorClient(s.payments.FacilitatorURL)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /entrypoints", s.handleEntrypoints)
	mux.HandleFunc("GET /.well-known/agent.json", s.handleAgentCard)
	mux.HandleFunc("GET /.well-known/agent-card.json", s.handleAgentCard)
	mux.Handle("GET /metrics", s.metrics.Handler())
	// Invoke and stream routes are registered for every key up front.
	// A stream request against a non-streaming entrypoint must be a
	// clean 400, never a 404, so clients can probe optimistically.
	mux.HandleFunc("POST /entrypoints/{key}/invoke", s.handleInvoke)
	mux.HandleFunc("POST /entrypoints/{key}/stream", s.handleStream)
	s.mux = mux

	return s
}

// Core exposes the execution core, for direct library-level invocation.
func (s *Server) Core() *agent.Core { return s.core }

// AddEntrypoint registers an entrypoint and, when the paywall is
// enabled, validates the payment configuration against it immediately:
// a misconfigured paywall fails here, at startup, not on the first
// paid request.
func (s *Server) AddEntrypoint(def *agent.Definition) error {
	if s.payments != nil {
		network := def.Network
		if network == "" {
			network = s.payments.Network
		}
		if err := payments.ValidateConfig(s.payments, network, def.Key); err != nil {
			return err
		}
	}
	if err := s.core.Registry().Add(def); err != nil {
		return err
	}
	s.logger.Info("entrypoint registered",
		"key", def.Key,
		"streaming", def.SupportsStreaming(),
		"paid", payments.ResolveRequirement(def, agent.OpInvoke, s.payments).Required)
	return nil
}

// Handler returns the HTTP handler, for mounting or for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("agent server starting", "addr", addr, "entrypoints", s.core.Registry().Len())
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
