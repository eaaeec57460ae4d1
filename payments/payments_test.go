package payments

import (
	"strings"
	"testing"

	"github.com/szaher/agentkit/agent"
)

const (
	testEVMAddress    = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testSolanaAddress = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
)

func TestResolvePrice(t *testing.T) {
	cfg := &Config{DefaultPrice: "$0.10"}

	tests := []struct {
		name string
		def  *agent.Definition
		cfg  *Config
		kind agent.OperationKind
		want string
	}{
		{
			name: "flat beats per-kind and default",
			def:  &agent.Definition{Price: &agent.Price{Flat: "$1.00", Invoke: "$0.01"}},
			cfg:  cfg,
			kind: agent.OpInvoke,
			want: "$1.00",
		},
		{
			name: "per-kind beats default",
			def:  &agent.Definition{Price: &agent.Price{Stream: "$0.02"}},
			cfg:  cfg,
			kind: agent.OpStream,
			want: "$0.02",
		},
		{
			name: "default price fills the gap",
			def:  &agent.Definition{},
			cfg:  cfg,
			kind: agent.OpInvoke,
			want: "$0.10",
		},
		{
			name: "per-kind miss falls to default, not the other kind",
			def:  &agent.Definition{Price: &agent.Price{Invoke: "$0.01"}},
			cfg:  cfg,
			kind: agent.OpStream,
			want: "$0.10",
		},
		{
			name: "free without config",
			def:  &agent.Definition{},
			cfg:  nil,
			kind: agent.OpInvoke,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrice(tt.def, tt.cfg, tt.kind); got != tt.want {
				t.Errorf("ResolvePrice = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveRequirement(t *testing.T) {
	cfg := &Config{
		PayTo:          testEVMAddress,
		FacilitatorURL: "https://facilitator.example",
		Network:        "base-sepolia",
		DefaultPrice:   "$0.05",
	}

	t.Run("nil config requires nothing even when priced", func(t *testing.T) {
		def := &agent.Definition{Price: &agent.Price{Flat: "$1.00"}}
		req := ResolveRequirement(def, agent.OpInvoke, nil)
		if req.Required {
			t.Error("Required = true without a payments config")
		}
	})

	t.Run("priced entrypoint demands payment", func(t *testing.T) {
		def := &agent.Definition{Price: &agent.Price{Invoke: "$0.01"}}
		req := ResolveRequirement(def, agent.OpInvoke, cfg)
		if !req.Required {
			t.Fatal("Required = false, want true")
		}
		if req.Price != "$0.01" {
			t.Errorf("Price = %q, want %q", req.Price, "$0.01")
		}
		if req.PayTo != testEVMAddress {
			t.Errorf("PayTo = %q, want config address", req.PayTo)
		}
		if req.Network != "base-sepolia" {
			t.Errorf("Network = %q, want %q", req.Network, "base-sepolia")
		}
	})

	t.Run("entrypoint network overrides config network", func(t *testing.T) {
		def := &agent.Definition{Network: "base", Price: &agent.Price{Flat: "$0.01"}}
		req := ResolveRequirement(def, agent.OpInvoke, cfg)
		if req.Network != "base" {
			t.Errorf("Network = %q, want %q", req.Network, "base")
		}
	})

	t.Run("no network anywhere requires nothing", func(t *testing.T) {
		def := &agent.Definition{Price: &agent.Price{Flat: "$0.01"}}
		req := ResolveRequirement(def, agent.OpInvoke, &Config{PayTo: testEVMAddress, DefaultPrice: "$0.05"})
		if req.Required {
			t.Error("Required = true without a network")
		}
	})

	t.Run("free price requires nothing", func(t *testing.T) {
		def := &agent.Definition{}
		req := ResolveRequirement(def, agent.OpStream, &Config{PayTo: testEVMAddress, Network: "base"})
		if req.Required {
			t.Error("Required = true for a free entrypoint")
		}
	})
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{
		PayTo:          testEVMAddress,
		FacilitatorURL: "https://facilitator.example",
		Network:        "base",
	}
	if err := ValidateConfig(valid, valid.Network, "echo"); err != nil {
		t.Fatalf("ValidateConfig of valid config failed: %v", err)
	}

	tests := []struct {
		name    string
		cfg     Config
		network string
		wantSub string
	}{
		{"missing payTo", Config{FacilitatorURL: "https://f", Network: "base"}, "base", "payTo"},
		{"bad address", Config{PayTo: "not-an-address", FacilitatorURL: "https://f", Network: "base"}, "base", "neither"},
		{"missing facilitator", Config{PayTo: testEVMAddress, Network: "base"}, "base", "facilitatorUrl"},
		{"missing network", Config{PayTo: testEVMAddress, FacilitatorURL: "https://f"}, "", "network is not set"},
		{"unsupported network", Config{PayTo: testEVMAddress, FacilitatorURL: "https://f"}, "dogecoin", "unsupported network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(&tt.cfg, tt.network, "echo")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantSub)
			}
			if !strings.Contains(err.Error(), `"echo"`) {
				t.Errorf("error = %q, want it to name the entrypoint", err)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PAYMENTS_RECEIVABLE_ADDRESS", testEVMAddress)
	t.Setenv("FACILITATOR_URL", "https://facilitator.example")
	t.Setenv("NETWORK", "base-sepolia")
	t.Setenv("DEFAULT_PRICE", "$0.01")

	cfg := FromEnv()
	if cfg.PayTo != testEVMAddress {
		t.Errorf("PayTo = %q, want env address", cfg.PayTo)
	}
	if cfg.Network != "base-sepolia" {
		t.Errorf("Network = %q, want base-sepolia", cfg.Network)
	}
	if cfg.DefaultPrice != "$0.01" {
		t.Errorf("DefaultPrice = %q, want $0.01", cfg.DefaultPrice)
	}
}

func TestAddressValidation(t *testing.T) {
	if !ValidEVMAddress(testEVMAddress) {
		t.Error("valid EVM address rejected")
	}
	if ValidEVMAddress("0x123") {
		t.Error("short hex accepted as EVM address")
	}
	if !ValidSolanaAddress(testSolanaAddress) {
		t.Error("valid Solana address rejected")
	}
	if ValidSolanaAddress("O0Il") {
		t.Error("non-base58 string accepted as Solana address")
	}
	if !ValidAddress(testEVMAddress) || !ValidAddress(testSolanaAddress) {
		t.Error("ValidAddress rejected a valid address")
	}
	if ValidAddress("nope") {
		t.Error("ValidAddress accepted garbage")
	}
}

func TestSupportedNetworks(t *testing.T) {
	for _, network := range []string{"base", "base-sepolia", "solana", "polygon"} {
		if !SupportedNetwork(network) {
			t.Errorf("SupportedNetwork(%q) = false, want true", network)
		}
	}
	if SupportedNetwork("mainnet-beta") {
		t.Error("SupportedNetwork accepted an unknown network")
	}
}
