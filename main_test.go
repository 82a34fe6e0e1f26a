package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/spencer-p/tidepredict/pkg/constituents/constituentstest"
	"github.com/spencer-p/tidepredict/pkg/tide"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TIDE_PORT", "9090")
	t.Setenv("TIDE_YEARLY_FILE", "/data/ft03.dta")
	t.Setenv("TIDE_CACHE_TTL", "5m")
	t.Setenv("TIDE_LOG_JSON", "false")

	var env Config
	if err := envconfig.Process("tide", &env); err != nil {
		t.Fatal(err)
	}
	if env.Port != "9090" || env.YearlyFile != "/data/ft03.dta" || env.StationFile != "ft07.dta" {
		t.Errorf("got %+v", env)
	}
	if env.CacheTTL.Minutes() != 5 || env.LogJSON || env.DatabaseDSN != "" {
		t.Errorf("got %+v", env)
	}
}

func TestServerPrefix(t *testing.T) {
	files := constituentstest.Standard(t, 2023, 2023, 1, "")
	paths := tide.Paths{Yearly: files.Yearly, Station: files.Station, Secondary: files.Secondary}
	env := Config{Port: "0", Prefix: "/tides/"}
	srv := newServer(env, paths, zap.NewNop().Sugar(), nil)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tides/api/v1/tide?station=1&start=2023-01-01T00:00:00Z&hours=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code %d: %s", w.Code, w.Body)
	}
	if lines := strings.Count(w.Body.String(), "\n"); lines != 2 {
		t.Errorf("%d lines, want 2: %q", lines, w.Body)
	}
}
