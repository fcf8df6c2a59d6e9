package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

// Metrics holds the process' Prometheus collectors. Every method is nil-safe so
// callers can use Current() unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	llmRequests   *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	llmRetries    *prometheus.CounterVec
	stageLatency  *prometheus.HistogramVec
	pipelineRuns  *prometheus.CounterVec
	pipelineState *prometheus.CounterVec
	pipelineBusy  prometheus.Gauge
	imageResults  *prometheus.CounterVec
	assetDegraded *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Current() *Metrics {
	return instance
}

// Init builds the process-wide collectors once. It returns nil when metrics
// are disabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	initOnce.Do(func() {
		if !enabled {
			return
		}
		instance = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

// NewMetrics builds collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_api_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neurobots_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "neurobots_api_inflight_requests",
			Help: "HTTP requests currently being served",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_llm_requests_total",
			Help: "Generation backend calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neurobots_llm_request_duration_seconds",
			Help:    "Generation backend call latency per attempt",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		llmRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_llm_retries_total",
			Help: "Backoff waits taken after rate-limit responses",
		}, []string{"provider"}),
		stageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neurobots_pipeline_stage_duration_seconds",
			Help:    "Lesson pipeline stage latency",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage", "status"}),
		pipelineRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_pipeline_runs_total",
			Help: "Lesson pipeline runs by terminal outcome",
		}, []string{"outcome"}),
		pipelineState: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_pipeline_transitions_total",
			Help: "Lesson pipeline state transitions",
		}, []string{"state"}),
		pipelineBusy: f.NewGauge(prometheus.GaugeOpts{
			Name: "neurobots_pipeline_inflight",
			Help: "Lesson pipeline runs currently in flight",
		}),
		imageResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_storyboard_images_total",
			Help: "Scene image generation results",
		}, []string{"outcome"}),
		assetDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neurobots_asset_degraded_total",
			Help: "Assets that degraded instead of failing the request",
		}, []string{"asset"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(provider, outcome).Inc()
	m.llmLatency.WithLabelValues(provider).Observe(dur.Seconds())
}

func (m *Metrics) IncLLMRetry(provider string) {
	if m == nil {
		return
	}
	m.llmRetries.WithLabelValues(provider).Inc()
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage, status).Observe(dur.Seconds())
}

func (m *Metrics) IncPipelineRun(outcome string) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPipelineTransition(state string) {
	if m == nil {
		return
	}
	m.pipelineState.WithLabelValues(state).Inc()
}

func (m *Metrics) PipelineInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.pipelineBusy.Add(delta)
}

func (m *Metrics) IncImageResult(outcome string) {
	if m == nil {
		return
	}
	m.imageResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAssetDegraded(asset string) {
	if m == nil {
		return
	}
	m.assetDegraded.WithLabelValues(asset).Inc()
}
