package server

import (
	"net/http"

	"github.com/szaher/agentkit/manifest"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"name":    s.core.Meta().Name,
		"version": s.core.Meta().Version,
	})
}

func (s *Server) handleEntrypoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, manifest.Build(s.core.Meta(), s.core.List(), s.payments))
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	card := manifest.BuildCard(s.core.Meta(), s.core.List(), requestOrigin(r), s.payments, s.trust)
	writeJSON(w, http.StatusOK, card)
}

// requestOrigin reconstructs the externally visible base URL of the
// request. Proxies that terminate TLS are expected to set
// X-Forwarded-Proto.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
