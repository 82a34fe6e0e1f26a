package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/spencer-p/tidepredict/pkg/cache"
	"github.com/spencer-p/tidepredict/pkg/constituents"
	"github.com/spencer-p/tidepredict/pkg/data"
	"github.com/spencer-p/tidepredict/pkg/metrics"
	"github.com/spencer-p/tidepredict/pkg/sunset"
	"github.com/spencer-p/tidepredict/pkg/tide"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

const (
	defaultHours    = 24
	defaultRunLimit = 10
	maxRunLimit     = 100
	requestIDKey    = "X-Request-Id"
)

// Archiver stores answered requests and lists them back.
type Archiver interface {
	Save(ctx context.Context, run data.Run) error
	Recent(ctx context.Context, station, limit int) ([]data.Run, error)
}

// Server answers tide prediction requests over HTTP.
type Server struct {
	log     *zap.SugaredLogger
	cache   *cache.Timed[[]byte]
	archive Archiver
	// engines cache constituents between requests; each is used by one
	// request at a time.
	engines sync.Pool
}

// NewServer serves predictions from the datasets at paths. Responses are
// cached for ttl. archive may be nil.
func NewServer(paths tide.Paths, log *zap.SugaredLogger, ttl time.Duration, archive Archiver) *Server {
	s := &Server{
		log:     log,
		cache:   cache.NewTimed[[]byte](ttl),
		archive: archive,
	}
	s.engines.New = func() any {
		return tide.NewEngine(paths,
			tide.WithLogger(log),
			tide.WithLoadHook(func(d constituents.Dataset) {
				metrics.ObserveDatasetLoad(string(d))
			}))
	}
	return s
}

// Register adds the API and metrics endpoints to r.
func (s *Server) Register(r *mux.Router) {
	r.Use(metrics.LatencyHandler)
	r.Handle("/api/v1/tide", http.HandlerFunc(s.serveTide)).Methods(http.MethodGet)
	r.Handle("/api/v1/runs", http.HandlerFunc(s.serveRuns)).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok\n")
	})
}

type response struct {
	Station     int              `json:"station"`
	Secondary   bool             `json:"secondary"`
	Mode        tide.Mode        `json:"mode"`
	Datum       float64          `json:"datum"`
	Predictions tide.Predictions `json:"predictions,omitempty"`
}

func (s *Server) serveTide(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	log := s.log.With("request_id", id.String())
	w.Header().Set(requestIDKey, id.String())

	// cache based on method and URL, which should encapsulate the query
	key := fmt.Sprintf("%s %s", r.Method, r.URL)
	outputFormat := r.FormValue("o")
	if cached, ok := s.cache.Get(key); ok {
		writeContentType(w, outputFormat)
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	req, place, err := parseRequest(r)
	if err != nil {
		s.fail(w, log, err)
		return
	}

	engine := s.engines.Get().(*tide.Engine)
	res, err := engine.Predict(req)
	s.engines.Put(engine)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	metrics.ObservePrediction(req.Secondary)

	if place != nil && len(res.Predictions) > 0 {
		annotateDaylight(res.Predictions, *place)
	}

	if s.archive != nil {
		if err := s.archive.Save(r.Context(), data.NewRun(id, req, res)); err != nil {
			log.Errorw("failed to archive run", "error", err)
		}
	}

	// duplicate the http response onto a buffer for the cache
	var toCache bytes.Buffer
	mw := io.MultiWriter(w, &toCache)

	writeContentType(w, outputFormat)
	w.WriteHeader(http.StatusOK)
	if outputFormat == "json" {
		err = json.NewEncoder(mw).Encode(response{
			Station:     req.Station,
			Secondary:   req.Secondary,
			Mode:        req.Mode,
			Datum:       res.Datum,
			Predictions: res.Predictions,
		})
		if err != nil {
			log.Errorw("failed to encode JSON result", "error", err)
			return
		}
	} else {
		writeText(mw, req, res)
	}
	s.cache.Set(key, toCache.Bytes())
}

// serveRuns lists the latest archived runs of a station.
func (s *Server) serveRuns(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("path", r.URL.Path)
	if s.archive == nil {
		http.Error(w, "No archive configured", http.StatusNotFound)
		return
	}

	q := queryParser{r: r}
	station := q.intValue("station", 0)
	limit := q.intValue("limit", defaultRunLimit)
	if q.err == nil && station < 1 {
		q.invalid("station", errors.New("must be provided"))
	}
	if q.err == nil && (limit < 1 || limit > maxRunLimit) {
		q.invalid("limit", fmt.Errorf("%d is outside 1-%d", limit, maxRunLimit))
	}
	if q.err != nil {
		s.fail(w, log, q.err)
		return
	}

	runs, err := s.archive.Recent(r.Context(), station, limit)
	if err != nil {
		s.fail(w, log, err)
		return
	}
	if runs == nil {
		runs = []data.Run{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		log.Errorw("failed to encode runs", "error", err)
	}
}

func writeContentType(w http.ResponseWriter, outputFormat string) {
	if outputFormat == "json" {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
}

func writeText(w io.Writer, req tide.Request, res tide.Result) {
	if req.Mode == tide.MLLW {
		fmt.Fprintf(w, "%.3f\n", res.Datum)
		return
	}
	for _, p := range res.Predictions {
		fmt.Fprintf(w, "%s\n", p.String())
	}
}

func annotateDaylight(preds tide.Predictions, place sunset.Place) {
	first := time.Time(preds[0].Time)
	last := time.Time(preds[len(preds)-1].Time)
	// Start a day early so samples before the first sunrise have a sunset
	// behind them.
	events := sunset.GetSunEvents(first.AddDate(0, 0, -1), last.Sub(first)+48*time.Hour, place)
	for i := range preds {
		day := events.IsDaylight(time.Time(preds[i].Time))
		preds[i].Daylight = &day
	}
}

// fail writes err with the status its kind deserves.
func (s *Server) fail(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var (
		invalid *tideerr.InvalidInputError
		lookup  *tideerr.LookupError
	)
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		code = http.StatusBadRequest
	case errors.As(err, &lookup):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		log.Errorw("prediction failed", "error", err)
	} else {
		log.Warnw("rejected request", "error", err)
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(code)
	fmt.Fprintf(w, "Failed to get data: %v\n", err)
}

// parseRequest reads the query parameters. place is nil unless both lat and
// lon are given.
func parseRequest(r *http.Request) (tide.Request, *sunset.Place, error) {
	q := queryParser{r: r}
	req := tide.Request{
		Station:   q.intValue("station", 0),
		Hours:     q.intValue("hours", defaultHours),
		Baseline:  q.floatValue("baseline", 0),
		Step:      q.floatValue("step", 0),
		AddMLLW:   q.boolValue("mllw", false),
		Seasonal:  q.boolValue("seasonal", true),
		Secondary: q.boolValue("secondary", false),
	}
	req.Start = q.timeValue("start")
	mode := r.FormValue("mode")
	if q.err != nil {
		return req, nil, q.err
	}
	var err error
	if req.Mode, err = tide.ParseMode(mode); err != nil {
		return req, nil, err
	}

	if r.FormValue("lat") == "" || r.FormValue("lon") == "" {
		return req, nil, nil
	}
	place := &sunset.Place{
		Lat:      q.floatValue("lat", 0),
		Long:     q.floatValue("lon", 0),
		Location: req.Start.Location(),
	}
	return req, place, q.err
}

// queryParser reads typed form values, remembering the first error.
type queryParser struct {
	r   *http.Request
	err error
}

func (q *queryParser) value(name string) (string, bool) {
	v := q.r.FormValue(name)
	return v, v != "" && q.err == nil
}

func (q *queryParser) invalid(name string, err error) {
	if q.err == nil {
		q.err = &tideerr.InvalidInputError{Field: name, Msg: err.Error()}
	}
}

func (q *queryParser) intValue(name string, def int) int {
	v, ok := q.value(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.invalid(name, err)
	}
	return n
}

func (q *queryParser) floatValue(name string, def float64) float64 {
	v, ok := q.value(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		q.invalid(name, err)
	}
	return f
}

func (q *queryParser) boolValue(name string, def bool) bool {
	v, ok := q.value(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.invalid(name, err)
	}
	return b
}

// timeValue parses an RFC 3339 timestamp, which always carries its UTC offset.
// The offset is kept as the location of the result.
func (q *queryParser) timeValue(name string) time.Time {
	v, ok := q.value(name)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		q.invalid(name, err)
	}
	return t
}
