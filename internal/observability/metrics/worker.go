package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the ingestion worker: documents processed, how
// long processing took, how large the documents were and how long
// messages sat in the queue. The service name is baked in as a constant
// label so call sites only report what happened.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	chunksPerDoc    prometheus.Histogram
	queueLag        prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	serviceLabel := prometheus.Labels{"service": service}

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "rag",
			Subsystem:   "worker",
			Name:        "document_process_total",
			Help:        "Total processed documents by status.",
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "rag",
			Subsystem:   "worker",
			Name:        "document_process_duration_seconds",
			Help:        "Document processing duration in seconds by status.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: serviceLabel,
		},
		[]string{"status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "rag",
			Subsystem:   "worker",
			Name:        "document_process_in_flight",
			Help:        "Number of in-flight document processing tasks.",
			ConstLabels: serviceLabel,
		},
	)
	chunksPerDoc := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "rag",
			Subsystem:   "worker",
			Name:        "document_chunk_count",
			Help:        "Embedding chunks produced per processed document.",
			Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
			ConstLabels: serviceLabel,
		},
	)
	queueLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "rag",
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Delay between ingestion publish and processing start.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			ConstLabels: serviceLabel,
		},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, chunksPerDoc, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		chunksPerDoc:    chunksPerDoc,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(status).Inc()
	m.processDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveDocumentChunks records how many embedding chunks a processed
// document produced.
func (m *WorkerMetrics) ObserveDocumentChunks(count int) {
	if count < 0 {
		return
	}
	m.chunksPerDoc.Observe(float64(count))
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.Observe(lag.Seconds())
}
