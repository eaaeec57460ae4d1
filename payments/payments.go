// Package payments implements x402 payment configuration, price
// resolution and payment-requirement derivation for entrypoints. The
// facilitator itself is an external collaborator; this package only
// decides what a request must pay and validates configuration early.
package payments

import (
	"fmt"
	"os"

	"github.com/szaher/agentkit/agent"
)

// Config holds the global x402 payment configuration for an agent.
type Config struct {
	// PayTo is the receivable chain address, EVM 0x-hex or Solana base58.
	PayTo string `json:"payTo" yaml:"pay_to"`
	// FacilitatorURL is the payment-verification service endpoint.
	FacilitatorURL string `json:"facilitatorUrl" yaml:"facilitator_url"`
	// Network identifies the chain; must be in the supported set.
	Network string `json:"network" yaml:"network"`
	// DefaultPrice applies to entrypoints without their own price.
	DefaultPrice string `json:"defaultPrice,omitempty" yaml:"default_price"`
}

// FromEnv builds a Config from the conventional environment variables.
// Missing variables yield empty fields; validation happens at
// entrypoint registration.
func FromEnv() *Config {
	return &Config{
		PayTo:          os.Getenv("PAYMENTS_RECEIVABLE_ADDRESS"),
		FacilitatorURL: os.Getenv("FACILITATOR_URL"),
		Network:        os.Getenv("NETWORK"),
		DefaultPrice:   os.Getenv("DEFAULT_PRICE"),
	}
}

// ResolvePrice determines the applicable price string for an
// entrypoint and operation kind. Strict precedence, no field-level
// merging: entrypoint flat price, then the entrypoint's per-kind
// price, then the config's default price, then "" (free).
func ResolvePrice(def *agent.Definition, cfg *Config, kind agent.OperationKind) string {
	if price := def.Price.For(kind); price != "" {
		return price
	}
	if cfg != nil {
		return cfg.DefaultPrice
	}
	return ""
}

// Requirement is the payment demanded of one request. Derived fresh
// per request, never stored.
type Requirement struct {
	Required       bool   `json:"required"`
	PayTo          string `json:"payTo,omitempty"`
	Price          string `json:"price,omitempty"`
	Network        string `json:"network,omitempty"`
	FacilitatorURL string `json:"facilitatorUrl,omitempty"`
}

// ResolveRequirement computes the payment requirement for one
// entrypoint operation. Without a payments config nothing is required,
// even when the entrypoint declares a price of its own.
func ResolveRequirement(def *agent.Definition, kind agent.OperationKind, cfg *Config) Requirement {
	if cfg == nil {
		return Requirement{}
	}

	network := def.Network
	if network == "" {
		network = cfg.Network
	}
	if network == "" {
		return Requirement{}
	}

	price := ResolvePrice(def, cfg, kind)
	if price == "" {
		return Requirement{}
	}

	return Requirement{
		Required:       true,
		PayTo:          cfg.PayTo,
		Price:          price,
		Network:        network,
		FacilitatorURL: cfg.FacilitatorURL,
	}
}

// ValidateConfig checks a payments configuration against an
// entrypoint's resolved network. It is called at registration time so
// misconfiguration fails at startup, not on the first paid request.
// Errors name the missing or invalid field and the offending key.
func ValidateConfig(cfg *Config, network, entrypointKey string) error {
	if cfg.PayTo == "" {
		return fmt.Errorf("payments config for entrypoint %q: payTo is not set (PAYMENTS_RECEIVABLE_ADDRESS)", entrypointKey)
	}
	if !ValidAddress(cfg.PayTo) {
		return fmt.Errorf("payments config for entrypoint %q: payTo %q is neither an EVM nor a Solana address", entrypointKey, cfg.PayTo)
	}
	if cfg.FacilitatorURL == "" {
		return fmt.Errorf("payments config for entrypoint %q: facilitatorUrl is not set (FACILITATOR_URL)", entrypointKey)
	}
	if network == "" {
		return fmt.Errorf("payments config for entrypoint %q: network is not set (NETWORK)", entrypointKey)
	}
	if !SupportedNetwork(network) {
		return fmt.Errorf("payments config for entrypoint %q: unsupported network %q (supported: %v)", entrypointKey, network, SupportedNetworks())
	}
	return nil
}
