// Package metrics exposes the Prometheus registry for the pipeline,
// mirroring the flat single-struct-of-vecs layout used across the
// rest of this codebase.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/videoedit/ai-edit-api/config"
)

// ClientMetrics tracks retry/failure/latency for one outbound HTTP
// dependency (vision, LLM, transcription, scene extraction, storage).
type ClientMetrics struct {
	RetryCount      *prometheus.GaugeVec
	FailureCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

func newClientMetrics(name string) ClientMetrics {
	return ClientMetrics{
		RetryCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: name + "_retry_count",
			Help: "The number of retried " + name + " requests",
		}, []string{"host"}),
		FailureCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: name + "_failure_count",
			Help: "The total number of failed " + name + " requests",
		}, []string{"host", "status_code"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name + "_request_duration",
			Help:    "Time taken to complete " + name + " requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"host"}),
	}
}

// AIEditAPIMetrics is the process-wide metrics registry.
type AIEditAPIMetrics struct {
	Version *prometheus.CounterVec

	JobsInFlight         prometheus.Gauge
	HTTPRequestsInFlight prometheus.Gauge

	GenerateRequestCount       prometheus.Counter
	GenerateRequestDurationSec prometheus.Histogram
	ApplyRequestCount          prometheus.Counter
	ApplyRequestDurationSec    prometheus.Histogram

	PlanValidationFailures prometheus.Counter
	RenderFailures         *prometheus.CounterVec
	UploadFailures         prometheus.Counter
	WebhookFailures        prometheus.Counter

	Vision          ClientMetrics
	LLM             ClientMetrics
	Transcription   ClientMetrics
	SceneExtraction ClientMetrics
	ObjectStore     ClientMetrics
}

func NewMetrics() *AIEditAPIMetrics {
	m := &AIEditAPIMetrics{
		Version: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "version",
			Help: "Current Git SHA / Tag that's running. Incremented once on app startup.",
		}, []string{"app", "version"}),

		JobsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jobs_in_flight",
			Help: "A count of the jobs currently being processed by the runner",
		}),
		HTTPRequestsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "A count of the HTTP requests currently being handled",
		}),

		GenerateRequestCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "generate_request_count",
			Help: "Number of POST /ai-edit/generate requests received",
		}),
		GenerateRequestDurationSec: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "generate_request_duration_sec",
			Help: "Duration of the generate pipeline stage",
		}),
		ApplyRequestCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "apply_request_count",
			Help: "Number of POST /ai-edit/apply/{job_id} requests received",
		}),
		ApplyRequestDurationSec: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "apply_request_duration_sec",
			Help: "Duration of the apply (render) pipeline stage",
		}),

		PlanValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "plan_validation_failures",
			Help: "Number of agent-produced EDLs that failed validation",
		}),
		RenderFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "render_failures",
			Help: "Number of render failures by aspect ratio",
		}, []string{"aspect"}),
		UploadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "upload_failures",
			Help: "Number of object storage upload failures",
		}),
		WebhookFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "webhook_failures",
			Help: "Number of failed (non-fatal) webhook callback deliveries",
		}),

		Vision:          newClientMetrics("vision_client"),
		LLM:             newClientMetrics("llm_client"),
		Transcription:   newClientMetrics("transcription_client"),
		SceneExtraction: newClientMetrics("scene_extraction_client"),
		ObjectStore:     newClientMetrics("object_store_client"),
	}

	m.Version.WithLabelValues("ai-edit-api", config.Version).Inc()

	return m
}

var Metrics = NewMetrics()
