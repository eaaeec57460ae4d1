package payments

import "github.com/ethereum/go-ethereum/common"

// Networks accepted by the x402 protocol. The set is static: anything
// else is rejected at entrypoint registration.
var evmNetworks = []string{
	"base",
	"base-sepolia",
	"avalanche",
	"avalanche-fuji",
	"iotex",
	"sei",
	"sei-testnet",
	"polygon",
	"polygon-amoy",
}

var svmNetworks = []string{
	"solana",
	"solana-devnet",
}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(evmNetworks)+len(svmNetworks))
	for _, n := range evmNetworks {
		m[n] = true
	}
	for _, n := range svmNetworks {
		m[n] = true
	}
	return m
}()

// SupportedNetwork reports whether a network identifier is in the
// supported EVM/Solana set.
func SupportedNetwork(network string) bool {
	return supported[network]
}

// SupportedNetworks returns the full supported set, EVM networks first.
func SupportedNetworks() []string {
	out := make([]string, 0, len(evmNetworks)+len(svmNetworks))
	out = append(out, evmNetworks...)
	out = append(out, svmNetworks...)
	return out
}

// ValidEVMAddress reports whether s is a well-formed 0x-prefixed EVM
// address.
func ValidEVMAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Solana addresses are base58-encoded 32-byte public keys, which
// encode to 32-44 characters.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Set = func() map[rune]bool {
	m := make(map[rune]bool, len(base58Alphabet))
	for _, r := range base58Alphabet {
		m[r] = true
	}
	return m
}()

// ValidSolanaAddress reports whether s looks like a base58 Solana
// public key.
func ValidSolanaAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	for _, r := range s {
		if !base58Set[r] {
			return false
		}
	}
	return true
}

// ValidAddress reports whether s is acceptable as a payTo address on
// any supported network family.
func ValidAddress(s string) bool {
	return ValidEVMAddress(s) || ValidSolanaAddress(s)
}
