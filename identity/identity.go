// Package identity carries the on-chain trust metadata an agent can
// attach to its card: trust models, registry registrations and
// validation/feedback URIs. Registration and signing mechanics are the
// job of an external collaborator; this package only shapes the
// metadata for discovery.
package identity

import "github.com/ethereum/go-ethereum/common"

// ZeroAddress is the canonical placeholder for "no address".
var ZeroAddress = common.Address{}.Hex()

// RegistrationEntry records an agent's registration with an on-chain
// identity registry.
type RegistrationEntry struct {
	AgentID      string `json:"agentId,omitempty"`
	AgentAddress string `json:"agentAddress,omitempty"`
	Registry     string `json:"registry,omitempty"`
	Network      string `json:"network,omitempty"`
	Signature    string `json:"signature,omitempty"`
}

// TrustConfig is the trust metadata merged into the agent card.
type TrustConfig struct {
	TrustModels            []string            `json:"trustModels,omitempty" yaml:"trust_models"`
	Registrations          []RegistrationEntry `json:"registrations,omitempty" yaml:"registrations"`
	ValidationRequestsURI  string              `json:"validationRequestsUri,omitempty" yaml:"validation_requests_uri"`
	ValidationResponsesURI string              `json:"validationResponsesUri,omitempty" yaml:"validation_responses_uri"`
	FeedbackDataURI        string              `json:"feedbackDataUri,omitempty" yaml:"feedback_data_uri"`
}

// SanitizeAddress normalises a hex address to its checksummed form,
// falling back to the zero address for anything malformed. Callers can
// compare against ZeroAddress to detect the fallback.
func SanitizeAddress(addr string) string {
	if !common.IsHexAddress(addr) {
		return ZeroAddress
	}
	return common.HexToAddress(addr).Hex()
}
