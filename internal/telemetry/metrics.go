package telemetry

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics collects Prometheus-style metrics for entrypoint execution.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	invocationsTotal map[string]int64 // key: entrypoint,kind,status
	envelopesTotal   map[string]int64 // key: entrypoint,envelope kind
	paymentsRejected map[string]int64 // key: entrypoint,kind

	// Histograms (simplified: bucket counts + sum + count)
	invocationDurations map[string]*histogram // key: entrypoint,kind
}

type histogram struct {
	buckets []float64
	counts  []int64
	sum     float64
	count   int64
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

func newHistogram() *histogram {
	return &histogram{
		buckets: defaultBuckets,
		counts:  make([]int64, len(defaultBuckets)+1), // +1 for +Inf
	}
}

func (h *histogram) observe(value float64) {
	h.sum += value
	h.count++
	for i, b := range h.buckets {
		if value <= b {
			h.counts[i]++
		}
	}
	h.counts[len(h.buckets)]++ // +Inf always counts
}

// NewMetrics creates a new Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		invocationsTotal:    make(map[string]int64),
		envelopesTotal:      make(map[string]int64),
		paymentsRejected:    make(map[string]int64),
		invocationDurations: make(map[string]*histogram),
	}
}

// RecordInvocation records a completed invoke or stream run.
func (m *Metrics) RecordInvocation(entrypoint, kind, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invocationsTotal[fmt.Sprintf("%s,%s,%s", entrypoint, kind, status)]++

	dkey := fmt.Sprintf("%s,%s", entrypoint, kind)
	h, ok := m.invocationDurations[dkey]
	if !ok {
		h = newHistogram()
		m.invocationDurations[dkey] = h
	}
	h.observe(duration.Seconds())
}

// RecordEnvelope records one emitted stream envelope.
func (m *Metrics) RecordEnvelope(entrypoint, envelopeKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelopesTotal[fmt.Sprintf("%s,%s", entrypoint, envelopeKind)]++
}

// RecordPaymentRejected records a request turned away with 402.
func (m *Metrics) RecordPaymentRejected(entrypoint, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentsRejected[fmt.Sprintf("%s,%s", entrypoint, kind)]++
}

// Handler returns an HTTP handler serving Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(m.Render()))
	})
}

// Render produces the metrics in Prometheus text exposition format.
func (m *Metrics) Render() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP agentkit_invocations_total Total entrypoint invocations by kind and status.\n")
	b.WriteString("# TYPE agentkit_invocations_total counter\n")
	for _, key := range sortedKeys(m.invocationsTotal) {
		parts := strings.SplitN(key, ",", 3)
		fmt.Fprintf(&b, "agentkit_invocations_total{entrypoint=%q,kind=%q,status=%q} %d\n",
			parts[0], parts[1], parts[2], m.invocationsTotal[key])
	}

	b.WriteString("# HELP agentkit_stream_envelopes_total Total stream envelopes emitted by kind.\n")
	b.WriteString("# TYPE agentkit_stream_envelopes_total counter\n")
	for _, key := range sortedKeys(m.envelopesTotal) {
		parts := strings.SplitN(key, ",", 2)
		fmt.Fprintf(&b, "agentkit_stream_envelopes_total{entrypoint=%q,envelope=%q} %d\n",
			parts[0], parts[1], m.envelopesTotal[key])
	}

	b.WriteString("# HELP agentkit_payments_rejected_total Requests rejected with 402.\n")
	b.WriteString("# TYPE agentkit_payments_rejected_total counter\n")
	for _, key := range sortedKeys(m.paymentsRejected) {
		parts := strings.SplitN(key, ",", 2)
		fmt.Fprintf(&b, "agentkit_payments_rejected_total{entrypoint=%q,kind=%q} %d\n",
			parts[0], parts[1], m.paymentsRejected[key])
	}

	b.WriteString("# HELP agentkit_invocation_duration_seconds Entrypoint execution duration.\n")
	b.WriteString("# TYPE agentkit_invocation_duration_seconds histogram\n")
	dkeys := make([]string, 0, len(m.invocationDurations))
	for key := range m.invocationDurations {
		dkeys = append(dkeys, key)
	}
	sort.Strings(dkeys)
	for _, key := range dkeys {
		parts := strings.SplitN(key, ",", 2)
		h := m.invocationDurations[key]
		// observe() increments every bucket whose bound covers the
		// value, so the counts are already cumulative.
		for i, upper := range h.buckets {
			fmt.Fprintf(&b, "agentkit_invocation_duration_seconds_bucket{entrypoint=%q,kind=%q,le=%q} %d\n",
				parts[0], parts[1], fmt.Sprintf("%g", upper), h.counts[i])
		}
		fmt.Fprintf(&b, "agentkit_invocation_duration_seconds_bucket{entrypoint=%q,kind=%q,le=\"+Inf\"} %d\n",
			parts[0], parts[1], h.count)
		fmt.Fprintf(&b, "agentkit_invocation_duration_seconds_sum{entrypoint=%q,kind=%q} %g\n",
			parts[0], parts[1], h.sum)
		fmt.Fprintf(&b, "agentkit_invocation_duration_seconds_count{entrypoint=%q,kind=%q} %d\n",
			parts[0], parts[1], h.count)
	}

	return b.String()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
