package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLatencyHandlerRecordsStatus(t *testing.T) {
	h := LatencyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/teapot", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("code %d", w.Code)
	}

	out := httptest.NewRecorder()
	Handler().ServeHTTP(out, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(out.Body.String(), `tide_request_latency_count{code="418",path="/teapot",verb="GET"}`) {
		t.Errorf("no latency recorded for the teapot")
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(datasetLoads.WithLabelValues("yearly"))
	ObserveDatasetLoad("yearly")
	ObserveDatasetLoad("yearly")
	if got := testutil.ToFloat64(datasetLoads.WithLabelValues("yearly")) - before; got != 2 {
		t.Errorf("dataset loads went up by %v, want 2", got)
	}

	before = testutil.ToFloat64(predictions.WithLabelValues("secondary"))
	ObservePrediction(true)
	if got := testutil.ToFloat64(predictions.WithLabelValues("secondary")) - before; got != 1 {
		t.Errorf("secondary predictions went up by %v, want 1", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	ObservePrediction(false)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), `tide_predictions_total{station_kind="primary"}`) {
		t.Errorf("predictions counter missing from /metrics output")
	}
}
