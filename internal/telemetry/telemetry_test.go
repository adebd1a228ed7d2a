package telemetry

import (
	"context"
	"testing"
)

func TestInitMetricsWithGlobalNoopMeter(t *testing.T) {
	m, err := InitMetrics()
	if err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	m.RecordRequest("GET", "/health", "success", 0.01)
	m.RecordTokensUsed(120, "google", "gemini-2.0-flash-exp")
	m.RecordPDFProcessing(1.5, "success")
	m.RecordSummary(2.0, "short", "success")
	m.RecordQuestion("error")
	m.RecordCircuitBreakerState("gemini", "open")
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	m.RecordRequest("GET", "/", "success", 0)
	m.RecordTokensUsed(1, "google", "x")
	m.RecordPDFProcessing(0, "error")
	m.RecordSummary(0, "long", "error")
	m.RecordQuestion("success")
	m.RecordCircuitBreakerState("gemini", "closed")
}

func TestInitTracerWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	shutdown()
}
