package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsRender(t *testing.T) {
	m := NewMetrics()
	m.RecordInvocation("echo", "invoke", "succeeded", 30*time.Millisecond)
	m.RecordInvocation("echo", "invoke", "succeeded", 70*time.Millisecond)
	m.RecordInvocation("echo", "invoke", "failed", 5*time.Millisecond)
	m.RecordEnvelope("narrate", "delta")
	m.RecordPaymentRejected("paid", "stream")

	out := m.Render()

	wantLines := []string{
		`agentkit_invocations_total{entrypoint="echo",kind="invoke",status="succeeded"} 2`,
		`agentkit_invocations_total{entrypoint="echo",kind="invoke",status="failed"} 1`,
		`agentkit_stream_envelopes_total{entrypoint="narrate",envelope="delta"} 1`,
		`agentkit_payments_rejected_total{entrypoint="paid",kind="stream"} 1`,
		`agentkit_invocation_duration_seconds_count{entrypoint="echo",kind="invoke"} 3`,
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("render is missing %q\n%s", line, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	m := NewMetrics()
	m.RecordInvocation("echo", "invoke", "succeeded", 30*time.Millisecond)
	m.RecordInvocation("echo", "invoke", "succeeded", 200*time.Millisecond)

	out := m.Render()

	// 30ms lands in le="0.05" and up; 200ms first lands in le="0.25".
	if !strings.Contains(out, `le="0.05"} 1`) {
		t.Errorf("le=0.05 bucket should hold one observation\n%s", out)
	}
	if !strings.Contains(out, `le="0.25"} 2`) {
		t.Errorf("le=0.25 bucket should hold both observations\n%s", out)
	}
	if !strings.Contains(out, `le="+Inf"} 2`) {
		t.Errorf("+Inf bucket should hold both observations\n%s", out)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordInvocation("echo", "invoke", "succeeded", time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain exposition", got)
	}
	if !strings.Contains(rec.Body.String(), "agentkit_invocations_total") {
		t.Error("handler output is missing the invocation counter")
	}
}
