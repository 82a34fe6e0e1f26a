package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "tide"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	datasetLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "dataset_loads_total",
			Subsystem: subsystem,
			Help:      "Reads of a constituent dataset from disk.",
		},
		[]string{"dataset"},
	)

	predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "predictions_total",
			Subsystem: subsystem,
			Help:      "Successful predictions by station kind.",
		},
		[]string{"station_kind"},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		datasetLoads,
		predictions,
	)
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// ObserveDatasetLoad counts one read of dataset.
func ObserveDatasetLoad(dataset string) {
	datasetLoads.WithLabelValues(dataset).Inc()
}

// ObservePrediction counts one prediction for a primary or secondary station.
func ObservePrediction(secondary bool) {
	kind := "primary"
	if secondary {
		kind = "secondary"
	}
	predictions.WithLabelValues(kind).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// LatencyHandler records how long next takes to answer, labelled with the
// status code it wrote.
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, strconv.Itoa(rec.code), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// statusRecorder remembers the status code written through it. Unset codes
// are 200, as in net/http.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
