package agent

import "time"

// EnvelopeKind tags stream envelope variants.
type EnvelopeKind string

const (
	KindRunStart EnvelopeKind = "run-start"
	KindText     EnvelopeKind = "text"
	KindDelta    EnvelopeKind = "delta"
	KindAsset    EnvelopeKind = "asset"
	KindControl  EnvelopeKind = "control"
	KindError    EnvelopeKind = "error"
	KindRunEnd   EnvelopeKind = "run-end"
)

// RunStatus is the terminal status carried by a run-end envelope.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Transfer modes for asset envelopes.
const (
	TransferInline   = "inline"
	TransferExternal = "external"
)

// Envelope is one typed event in the streaming protocol. Exactly one
// run-start opens a run and exactly one run-end closes it; every other
// kind occurs strictly between them with non-decreasing sequence
// numbers. RunID, Sequence and CreatedAt are stamped by the transport
// when the envelope is sent; handlers only fill the payload fields.
type Envelope struct {
	Kind      EnvelopeKind           `json:"kind"`
	RunID     string                 `json:"runId,omitempty"`
	Sequence  int64                  `json:"sequence"`
	CreatedAt string                 `json:"createdAt,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`

	// text / delta
	Text  string `json:"text,omitempty"`
	Delta string `json:"delta,omitempty"`
	Mime  string `json:"mime,omitempty"`
	Final bool   `json:"final,omitempty"`
	Role  string `json:"role,omitempty"`

	// asset
	AssetID   string `json:"assetId,omitempty"`
	Name      string `json:"name,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Transfer  string `json:"transfer,omitempty"`
	Data      string `json:"data,omitempty"`
	Href      string `json:"href,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`

	// control
	Control string      `json:"control,omitempty"`
	Payload interface{} `json:"payload,omitempty"`

	// error
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`

	// run-end
	Status RunStatus   `json:"status,omitempty"`
	Output interface{} `json:"output,omitempty"`
	Usage  *Usage      `json:"usage,omitempty"`
	Model  string      `json:"model,omitempty"`
	Error  *ErrorInfo  `json:"error,omitempty"`
}

// TextEnvelope builds a text push envelope.
func TextEnvelope(text string) Envelope {
	return Envelope{Kind: KindText, Text: text}
}

// DeltaEnvelope builds an incremental text push envelope.
func DeltaEnvelope(delta string) Envelope {
	return Envelope{Kind: KindDelta, Delta: delta}
}

// FinalDeltaEnvelope builds the closing delta of an incremental text
// sequence.
func FinalDeltaEnvelope(delta string) Envelope {
	return Envelope{Kind: KindDelta, Delta: delta, Final: true}
}

// InlineAssetEnvelope builds an asset envelope carrying base64 data.
func InlineAssetEnvelope(assetID, mime, data string) Envelope {
	return Envelope{Kind: KindAsset, AssetID: assetID, Mime: mime, Transfer: TransferInline, Data: data}
}

// ExternalAssetEnvelope builds an asset envelope referencing an
// external location.
func ExternalAssetEnvelope(assetID, mime, href string) Envelope {
	return Envelope{Kind: KindAsset, AssetID: assetID, Mime: mime, Transfer: TransferExternal, Href: href}
}

// ControlEnvelope builds an opaque control signal envelope.
func ControlEnvelope(control string, payload interface{}) Envelope {
	return Envelope{Kind: KindControl, Control: control, Payload: payload}
}

// ErrorEnvelope builds a non-terminal error push envelope.
func ErrorEnvelope(code, message string, retryable bool) Envelope {
	return Envelope{Kind: KindError, Code: code, Message: message, Retryable: retryable}
}

// Stamp fills the transport-owned base fields. The sequence counter is
// managed by the caller, one counter per run.
func (e *Envelope) Stamp(runID string, sequence int64, at time.Time) {
	e.RunID = runID
	e.Sequence = sequence
	e.CreatedAt = at.UTC().Format(time.RFC3339Nano)
}
