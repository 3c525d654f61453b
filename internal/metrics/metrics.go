package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineStageDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "ats_pipeline_stage_duration_seconds",
			Help:       "Duration of each step of the resume scoring pipeline.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage"},
	)
	PipelineResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_pipeline_results_total",
			Help: "Total number of processed resumes by terminal state.",
		},
		[]string{"result"},
	)
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_ai_requests_total",
			Help: "Total number of requests sent to the generative AI service.",
		},
		[]string{"operation", "outcome"},
	)
	AnalysisCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ats_analysis_cache_total",
			Help: "Analysis cache lookups by result.",
		},
		[]string{"result"},
	)
	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ats_extraction_duration_seconds",
			Help:    "Duration of resume text extraction by file type.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"ext"},
	)
	ReconciledJobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ats_reconciled_jobs_total",
			Help: "Total number of jobs whose candidate count was corrected by the reconciler.",
		},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ats_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PipelineStageDuration)
		prometheus.MustRegister(PipelineResults)
		prometheus.MustRegister(AIRequests)
		prometheus.MustRegister(AnalysisCache)
		prometheus.MustRegister(ExtractionDuration)
		prometheus.MustRegister(ReconciledJobs)
		prometheus.MustRegister(HTTPRequestDuration)
	})
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
