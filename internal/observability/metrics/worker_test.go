package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkerMetricsCountsByStatus(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.StartDocument()
	m.FinishDocument(10*time.Millisecond, nil)
	m.StartDocument()
	m.FinishDocument(10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("success total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.processTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("error total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.processInFlight); got != 0 {
		t.Fatalf("in flight = %v, want 0 after both finished", got)
	}
}

func TestWorkerMetricsExposesChunkAndLagObservations(t *testing.T) {
	m := NewWorkerMetrics("worker")

	m.ObserveDocumentChunks(42)
	m.ObserveDocumentChunks(-1)
	m.ObserveQueueLag(3 * time.Second)
	m.ObserveQueueLag(-time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `rag_worker_document_chunk_count_count{service="worker"} 1`) {
		t.Fatalf("chunk histogram missing or wrong count:\n%s", body)
	}
	if !strings.Contains(body, `rag_worker_queue_lag_seconds_count{service="worker"} 1`) {
		t.Fatalf("queue lag histogram missing or wrong count:\n%s", body)
	}
}
