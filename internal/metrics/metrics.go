// Package metrics records pipeline and HTTP metrics with Prometheus.
//
// A Recorder owns its registry so the CLI can dump one run to a textfile
// (node_exporter textfile collector format) and the server can expose the
// same series on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codecritic"

// Recorder implements the pipeline observer and the HTTP middleware.
type Recorder struct {
	reg *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	checkDuration *prometheus.HistogramVec
	remoteCalls   *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec
	parseStages   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New creates a Recorder with a private registry. withRuntime adds the Go
// and process collectors, which only make sense for a long-running server.
func New(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses run, by language and outcome.",
		}, []string{"language", "outcome"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"language"}),
		checkDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "local_check_duration_seconds",
			Help:      "Latency of the local checkers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"language"}),
		remoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Model calls, by outcome.",
		}, []string{"outcome"}),
		remoteLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Model call latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
		parseStages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_parse_total",
			Help:      "Model replies by the recovery stage that parsed them.",
		}, []string{"stage"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "path", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
	}
}

// ObserveRun records one finished analysis.
func (r *Recorder) ObserveRun(language, outcome string, d time.Duration) {
	r.runs.WithLabelValues(language, outcome).Inc()
	r.runDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveCheck records the local checker latency.
func (r *Recorder) ObserveCheck(language string, d time.Duration) {
	r.checkDuration.WithLabelValues(language).Observe(d.Seconds())
}

// ObserveRemote records one model call.
func (r *Recorder) ObserveRemote(outcome string, d time.Duration) {
	r.remoteCalls.WithLabelValues(outcome).Inc()
	r.remoteLatency.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveParse records which recovery stage handled a reply.
func (r *Recorder) ObserveParse(stage string) {
	r.parseStages.WithLabelValues(stage).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// WriteTextfile writes the current values for the node_exporter textfile
// collector. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Middleware records request metrics. pathOf maps a request to a bounded
// label such as the route pattern; nil uses the raw path.
func (r *Recorder) Middleware(pathOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			r.httpInFlight.Inc()
			defer r.httpInFlight.Dec()

			next.ServeHTTP(rec, req)

			path := req.URL.Path
			if pathOf != nil {
				if p := pathOf(req); p != "" {
					path = p
				}
			}
			labels := prometheus.Labels{
				"method": req.Method,
				"path":   path,
				"status": strconv.Itoa(rec.status),
			}
			r.httpRequests.With(labels).Inc()
			r.httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}
