package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const appLabel = "gh-star-sync"

// Recorder holds the sync collectors. It is the metrics sink for both the
// sync service and the rate limit transport.
type Recorder struct {
	runsTotal      prometheus.Counter
	successTotal   prometheus.Counter
	errorsTotal    prometheus.Counter
	duration       prometheus.Histogram
	readmeTotal    prometheus.Counter
	rateLimitWaits prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewRecorder registers the sync collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"app": appLabel}, reg))

	return &Recorder{
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Total number of synchronization runs started.",
		}),
		successTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sync_success_total",
			Help: "Total number of successful synchronization runs.",
		}),
		errorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of failed synchronization runs.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of synchronization runs in seconds.",
			Buckets: []float64{0.1, 5, 15, 50, 100, 300, 600},
		}),
		readmeTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "readme_fetch_total",
			Help: "Total number of README files fetched.",
		}),
		rateLimitWaits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_waits_total",
			Help: "Total number of times the service waited for GitHub API rate limit reset.",
		}),
	}
}

func (r *Recorder) RunStarted()   { r.runsTotal.Inc() }
func (r *Recorder) RunSucceeded() { r.successTotal.Inc() }
func (r *Recorder) RunFailed()    { r.errorsTotal.Inc() }

func (r *Recorder) ObserveRunDuration(d time.Duration) {
	r.duration.Observe(d.Seconds())
}

func (r *Recorder) ReadmesFetched(n int) {
	r.readmeTotal.Add(float64(n))
}

func (r *Recorder) RateLimitWait() { r.rateLimitWaits.Inc() }

// Handler exposes reg in the prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
