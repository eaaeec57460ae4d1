// Package config resolves kit-wide configuration from three layers:
// static defaults, the process environment, process-wide overrides set
// via Configure, and finally a call-scoped instance config. Each
// resolution produces a fresh value; no shared config object is ever
// mutated in place.
package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/szaher/agentkit/payments"
)

// PaymentDefaults is the payments slice of the kit config. All fields
// are optional here; completeness is enforced by the paywall at
// entrypoint registration.
type PaymentDefaults struct {
	FacilitatorURL string `yaml:"facilitator_url"`
	PayTo          string `yaml:"pay_to"`
	Network        string `yaml:"network"`
	DefaultPrice   string `yaml:"default_price"`
}

// Wallet configures the client-side payment wallet boundary.
type Wallet struct {
	APIURL string `yaml:"api_url"`
	// MaxPaymentBaseUnits caps outgoing payments in base units
	// (USDC has 6 decimals).
	MaxPaymentBaseUnits *big.Int `yaml:"-"`
	// MaxPaymentUSD is the same cap expressed in USD; used only when
	// MaxPaymentBaseUnits is unset.
	MaxPaymentUSD float64 `yaml:"max_payment_usd"`
}

// Config is one layer of kit configuration. Zero values mean "not set
// at this layer".
type Config struct {
	Payments PaymentDefaults `yaml:"payments"`
	Wallet   Wallet          `yaml:"wallet"`
}

// Resolved is a fully merged configuration value.
type Resolved struct {
	Payments PaymentDefaults
	Wallet   Wallet
}

// No payment defaults are baked in: receivable address, facilitator
// and network must be configured explicitly.
const defaultWalletAPIURL = "http://localhost:8787"

var (
	mu        sync.RWMutex
	overrides Config
)

// Configure merges process-wide overrides on top of any previously set
// overrides. Unset fields leave the existing value untouched.
func Configure(c Config) {
	mu.Lock()
	defer mu.Unlock()
	mergeInto(&overrides, &c)
}

// ResetForTesting clears process-wide overrides.
func ResetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	overrides = Config{}
}

// Resolve merges defaults, environment, process overrides and the
// optional call-scoped instance config, in that order, into a fresh
// value.
func Resolve(instance *Config) Resolved {
	merged := Config{
		Wallet: Wallet{APIURL: defaultWalletAPIURL},
	}

	env := fromEnv()
	mergeInto(&merged, &env)

	mu.RLock()
	o := overrides
	mu.RUnlock()
	mergeInto(&merged, &o)

	if instance != nil {
		mergeInto(&merged, instance)
	}
	return Resolved{Payments: merged.Payments, Wallet: merged.Wallet}
}

// PaymentsConfig converts the resolved payment defaults into a
// payments.Config, or nil when no receivable address is configured.
func (r Resolved) PaymentsConfig() *payments.Config {
	p := r.Payments
	if p.PayTo == "" && p.FacilitatorURL == "" && p.Network == "" {
		return nil
	}
	return &payments.Config{
		PayTo:          p.PayTo,
		FacilitatorURL: p.FacilitatorURL,
		Network:        p.Network,
		DefaultPrice:   p.DefaultPrice,
	}
}

// LoadFile reads one config layer from a YAML file, for use as an
// instance config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return &c, nil
}

func fromEnv() Config {
	return Config{
		Payments: PaymentDefaults{
			FacilitatorURL: os.Getenv("FACILITATOR_URL"),
			PayTo:          os.Getenv("PAYMENTS_RECEIVABLE_ADDRESS"),
			Network:        os.Getenv("NETWORK"),
			DefaultPrice:   os.Getenv("DEFAULT_PRICE"),
		},
		Wallet: Wallet{
			APIURL:              os.Getenv("WALLET_API_URL"),
			MaxPaymentBaseUnits: parseBigIntEnv(os.Getenv("AGENT_WALLET_MAX_PAYMENT_BASE_UNITS")),
			MaxPaymentUSD:       parseFloatEnv(os.Getenv("AGENT_WALLET_MAX_PAYMENT_USD")),
		},
	}
}

// mergeInto copies each set field of layer over target, leaving unset
// fields alone.
func mergeInto(target, layer *Config) {
	if layer.Payments.FacilitatorURL != "" {
		target.Payments.FacilitatorURL = layer.Payments.FacilitatorURL
	}
	if layer.Payments.PayTo != "" {
		target.Payments.PayTo = layer.Payments.PayTo
	}
	if layer.Payments.Network != "" {
		target.Payments.Network = layer.Payments.Network
	}
	if layer.Payments.DefaultPrice != "" {
		target.Payments.DefaultPrice = layer.Payments.DefaultPrice
	}
	if layer.Wallet.APIURL != "" {
		target.Wallet.APIURL = layer.Wallet.APIURL
	}
	if layer.Wallet.MaxPaymentBaseUnits != nil {
		target.Wallet.MaxPaymentBaseUnits = new(big.Int).Set(layer.Wallet.MaxPaymentBaseUnits)
	}
	if layer.Wallet.MaxPaymentUSD > 0 {
		target.Wallet.MaxPaymentUSD = layer.Wallet.MaxPaymentUSD
	}
}

func parseBigIntEnv(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() <= 0 {
		return nil
	}
	return v
}

func parseFloatEnv(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}
