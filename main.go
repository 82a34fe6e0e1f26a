package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/spencer-p/tidepredict/pkg/data"
	"github.com/spencer-p/tidepredict/pkg/handlers"
	"github.com/spencer-p/tidepredict/pkg/logging"
	"github.com/spencer-p/tidepredict/pkg/tide"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	YearlyFile    string `default:"ft03.dta" split_words:"true"`
	StationFile   string `default:"ft07.dta" split_words:"true"`
	SecondaryFile string `default:"ft08.dta" split_words:"true"`

	LogLevel string        `default:"info" split_words:"true"`
	LogJSON  bool          `default:"true" envconfig:"LOG_JSON"`
	CacheTTL time.Duration `default:"1h" envconfig:"CACHE_TTL"`
	// Empty disables the archive.
	DatabaseDSN string `envconfig:"DATABASE_DSN"`
}

func main() {
	var env Config
	if err := envconfig.Process("tide", &env); err != nil {
		log.Fatal(err.Error())
	}

	logger, err := logging.New(env.LogLevel, env.LogJSON)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	var archive handlers.Archiver
	if env.DatabaseDSN != "" {
		db, err := data.Open(env.DatabaseDSN)
		if err != nil {
			logger.Fatalw("failed to open archive", "error", err)
		}
		archive = data.NewArchive(db)
	}

	paths := tide.Paths{
		Yearly:    env.YearlyFile,
		Station:   env.StationFile,
		Secondary: env.SecondaryFile,
	}
	srv := newServer(env, paths, logger, archive)
	logger.Infow("listening", "addr", srv.Addr, "prefix", env.Prefix)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func newServer(env Config, paths tide.Paths, logger *zap.SugaredLogger, archive handlers.Archiver) *http.Server {
	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(env.Prefix).Subrouter()

	s.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "GET %sapi/v1/tide?station=N&start=RFC3339[&hours=N&mode=hourly|single|mllw&o=json]\n", env.Prefix)
	})
	handlers.NewServer(paths, logger, env.CacheTTL, archive).Register(s)

	return &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
}
