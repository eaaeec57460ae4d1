// Package client provides a Go client for agentkit HTTP services.
//
// Usage:
//
//	c := client.New("http://localhost:8080")
//	result, err := c.Invoke(ctx, "echo", map[string]interface{}{"text": "hi"}, nil)
//	fmt.Println(result.Output)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/szaher/agentkit/agent"
	"github.com/szaher/agentkit/manifest"
	"github.com/szaher/agentkit/sse"
)

// APIError is a structured error response from an agentkit service. On
// 402 responses the payment fields carry the price quote.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Price      string `json:"price,omitempty"`
	Network    string `json:"network,omitempty"`
	PayTo      string `json:"payTo,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// PaymentRequired reports whether the service demanded payment for the
// requested operation.
func (e *APIError) PaymentRequired() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// InvokeResult is the response of a successful invoke call.
type InvokeResult struct {
	Status string       `json:"status"`
	Output interface{}  `json:"output"`
	Usage  *agent.Usage `json:"usage,omitempty"`
	Model  string       `json:"model,omitempty"`
}

// CallOptions holds per-call parameters.
type CallOptions struct {
	// Payment is an x402 payment proof sent as the X-Payment header.
	Payment string
	// Headers are extra request headers, merged in last.
	Headers http.Header
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout for non-streaming calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCardTTL sets how long a fetched agent card is served from cache.
func WithCardTTL(d time.Duration) Option {
	return func(c *Client) { c.cardTTL = d }
}

// Client talks to a single agentkit service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cardTTL    time.Duration

	group      singleflight.Group
	mu         sync.RWMutex
	card       *manifest.AgentCard
	cardExpiry time.Time
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		cardTTL:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// streamHTTPClient copies the configured HTTP client and drops its
// overall timeout: a stream lives as long as the run, and the deadline
// would sever the body mid-run. Cancellation comes from the context.
func (c *Client) streamHTTPClient() *http.Client {
	hc := *c.httpClient
	hc.Timeout = 0
	return &hc
}

func (c *Client) doRequest(ctx context.Context, hc *http.Client, method, path string, body interface{}, opts *CallOptions) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if opts != nil {
		if opts.Payment != "" {
			req.Header.Set("X-Payment", opts.Payment)
		}
		for k, vs := range opts.Headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}

	return resp, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	var body struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Code != "" {
		apiErr := body.Error
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       "unknown",
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}, opts *CallOptions) error {
	resp, err := c.doRequest(ctx, c.httpClient, method, path, body, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Card fetches the service's agent card. Results are cached for the
// configured TTL and concurrent fetches are collapsed into one request.
func (c *Client) Card(ctx context.Context) (*manifest.AgentCard, error) {
	c.mu.RLock()
	if c.card != nil && time.Now().Before(c.cardExpiry) {
		card := c.card
		c.mu.RUnlock()
		return card, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("card", func() (interface{}, error) {
		var card manifest.AgentCard
		if err := c.doJSON(ctx, http.MethodGet, "/.well-known/agent-card.json", nil, &card, nil); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.card = &card
		c.cardExpiry = time.Now().Add(c.cardTTL)
		c.mu.Unlock()
		return &card, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*manifest.AgentCard), nil
}

// Manifest fetches the entrypoint manifest.
func (c *Client) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	var m manifest.Manifest
	if err := c.doJSON(ctx, http.MethodGet, "/entrypoints", nil, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// Invoke calls an entrypoint and waits for the complete result.
func (c *Client) Invoke(ctx context.Context, key string, input interface{}, opts *CallOptions) (*InvokeResult, error) {
	var result InvokeResult
	body := map[string]interface{}{"input": input}
	if err := c.doJSON(ctx, http.MethodPost, "/entrypoints/"+key+"/invoke", body, &result, opts); err != nil {
		return nil, err
	}
	return &result, nil
}

// StreamCallback receives each envelope of a streaming run. Returning
// an error stops the stream.
type StreamCallback func(env agent.Envelope) error

// Stream calls a streaming entrypoint and delivers every envelope to
// the callback, run-start and run-end included. It returns the final
// run-end envelope.
func (c *Client) Stream(ctx context.Context, key string, input interface{}, opts *CallOptions, callback StreamCallback) (*agent.Envelope, error) {
	body := map[string]interface{}{"input": input}
	resp, err := c.doRequest(ctx, c.streamHTTPClient(), http.MethodPost, "/entrypoints/"+key+"/stream", body, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var end *agent.Envelope
	reader := sse.NewReader(resp.Body)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return end, fmt.Errorf("read stream: %w", err)
		}

		var env agent.Envelope
		if err := event.JSON(&env); err != nil {
			return end, fmt.Errorf("decode envelope: %w", err)
		}
		if callback != nil {
			if err := callback(env); err != nil {
				return end, err
			}
		}
		if env.Kind == agent.KindRunEnd {
			e := env
			end = &e
		}
	}
	if end == nil {
		return nil, fmt.Errorf("stream ended without a closing envelope")
	}
	return end, nil
}
