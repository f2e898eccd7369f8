package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
)

var (
	PipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard", Name: "pipeline_runs_total", Help: "Completed pipeline runs by data source",
	}, []string{"source"})
	PipelineFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard", Name: "pipeline_failures_total", Help: "Pipeline runs halted by an error",
	}, []string{"kind"})
	UploadFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard", Name: "upload_fallbacks_total", Help: "Unreadable uploads replaced by the embedded dataset",
	})
	EmptySelections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard", Name: "empty_selections_total", Help: "Runs whose date range matched no periods",
	})
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dashboard", Name: "pipeline_seconds", Help: "Pipeline latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(PipelineRuns, PipelineFailures, UploadFallbacks, EmptySelections, PipelineDuration)
}

func Handler() http.Handler { return promhttp.Handler() }

// Recorder feeds pipeline outcomes into the collectors above.
type Recorder struct{}

func (Recorder) ObserveRun(source ingest.Source, elapsed time.Duration) {
	PipelineRuns.WithLabelValues(string(source)).Inc()
	PipelineDuration.Observe(elapsed.Seconds())
}

func (Recorder) ObserveFallback() { UploadFallbacks.Inc() }

func (Recorder) ObserveEmpty() { EmptySelections.Inc() }

func (Recorder) ObserveFailure(kind string) { PipelineFailures.WithLabelValues(kind).Inc() }
