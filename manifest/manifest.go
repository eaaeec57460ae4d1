// Package manifest builds the discoverable read models for an agent:
// the entrypoint manifest and the A2A agent card. Both are pure
// functions of their inputs, regenerated per request and safe for
// concurrent use.
package manifest

import (
	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/identity"
	"github.com/szaher/agentkit/payments"
)

// Pricing is the per-operation price advertised for an entrypoint.
type Pricing struct {
	Invoke string `json:"invoke,omitempty"`
	Stream string `json:"stream,omitempty"`
}

// Entrypoint is one manifest entry. Schema documents are omitted when
// rendering fails; manifest generation never errors.
type Entrypoint struct {
	Description  string                 `json:"description,omitempty"`
	Streaming    bool                   `json:"streaming"`
	InputSchema  map[string]interface{} `json:"input_schema,omitempty"`
	OutputSchema map[string]interface{} `json:"output_schema,omitempty"`
	Pricing      *Pricing               `json:"pricing,omitempty"`
}

// Manifest is the agent description served at /.well-known/agent.json.
type Manifest struct {
	Name        string                `json:"name"`
	Version     string                `json:"version"`
	Description string                `json:"description,omitempty"`
	Icon        string                `json:"icon,omitempty"`
	Entrypoints map[string]Entrypoint `json:"entrypoints"`
}

// PaymentMethod advertises one way to pay the agent.
type PaymentMethod struct {
	Method     string            `json:"method"`
	Payee      string            `json:"payee"`
	Network    string            `json:"network"`
	Endpoint   string            `json:"endpoint,omitempty"`
	PriceModel map[string]string `json:"priceModel,omitempty"`
}

// AgentCard is the A2A-flavoured card: the manifest plus provider,
// capability, payment and trust metadata.
type AgentCard struct {
	Name                   string                       `json:"name"`
	Description            string                       `json:"description,omitempty"`
	URL                    string                       `json:"url,omitempty"`
	Version                string                       `json:"version,omitempty"`
	Capabilities           *Capabilities                `json:"capabilities,omitempty"`
	Entrypoints            map[string]Entrypoint        `json:"entrypoints"`
	Payments               []PaymentMethod              `json:"payments,omitempty"`
	Registrations          []identity.RegistrationEntry `json:"registrations,omitempty"`
	TrustModels            []string                     `json:"trustModels,omitempty"`
	ValidationRequestsURI  string                       `json:"ValidationRequestsURI,omitempty"`
	ValidationResponsesURI string                       `json:"ValidationResponsesURI,omitempty"`
	FeedbackDataURI        string                       `json:"FeedbackDataURI,omitempty"`
}

// Capabilities summarises what the agent supports.
type Capabilities struct {
	Streaming bool `json:"streaming"`
}

// Build produces the manifest for a registry snapshot. Pricing fields
// reflect the same resolution used by the paywall, so a discovered
// price is the price actually charged.
func Build(meta agent.Meta, defs []*agent.Definition, cfg *payments.Config) Manifest {
	entries := make(map[string]Entrypoint, len(defs))
	for _, def := range defs {
		entries[def.Key] = buildEntrypoint(def, cfg)
	}
	return Manifest{
		Name:        meta.Name,
		Version:     meta.Version,
		Description: meta.Description,
		Icon:        meta.Icon,
		Entrypoints: entries,
	}
}

// BuildCard produces the agent card for a registry snapshot, folding
// in payment methods and trust metadata when present. Trust models are
// deduplicated, preserving first occurrence order.
func BuildCard(meta agent.Meta, defs []*agent.Definition, origin string, cfg *payments.Config, trust *identity.TrustConfig) AgentCard {
	card := AgentCard{
		Name:        meta.Name,
		Description: meta.Description,
		URL:         origin,
		Version:     meta.Version,
		Entrypoints: make(map[string]Entrypoint, len(defs)),
	}

	streaming := false
	for _, def := range defs {
		card.Entrypoints[def.Key] = buildEntrypoint(def, cfg)
		if def.SupportsStreaming() {
			streaming = true
		}
	}
	card.Capabilities = &Capabilities{Streaming: streaming}

	if cfg != nil && cfg.PayTo != "" {
		method := PaymentMethod{
			Method:   "x402",
			Payee:    cfg.PayTo,
			Network:  cfg.Network,
			Endpoint: cfg.FacilitatorURL,
		}
		if cfg.DefaultPrice != "" {
			method.PriceModel = map[string]string{"default": cfg.DefaultPrice}
		}
		card.Payments = []PaymentMethod{method}
	}

	if trust != nil {
		card.TrustModels = dedupe(trust.TrustModels)
		card.Registrations = append([]identity.RegistrationEntry(nil), trust.Registrations...)
		card.ValidationRequestsURI = trust.ValidationRequestsURI
		card.ValidationResponsesURI = trust.ValidationResponsesURI
		card.FeedbackDataURI = trust.FeedbackDataURI
	}

	return card
}

func buildEntrypoint(def *agent.Definition, cfg *payments.Config) Entrypoint {
	entry := Entrypoint{
		Description:  def.Description,
		Streaming:    def.SupportsStreaming(),
		InputSchema:  def.Input.Document(),
		OutputSchema: def.Output.Document(),
	}

	invokePrice := payments.ResolvePrice(def, cfg, agent.OpInvoke)
	streamPrice := payments.ResolvePrice(def, cfg, agent.OpStream)
	if invokePrice != "" || streamPrice != "" {
		entry.Pricing = &Pricing{Invoke: invokePrice, Stream: streamPrice}
	}
	return entry
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
