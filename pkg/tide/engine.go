// Package tide computes water level predictions for primary and secondary
// stations over arbitrary spans of hours, crossing year boundaries as
// needed.
package tide

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spencer-p/tidepredict/pkg/constituents"
	"github.com/spencer-p/tidepredict/pkg/harmonic"
	"github.com/spencer-p/tidepredict/pkg/secondary"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
	"github.com/spencer-p/tidepredict/pkg/timetricks"
)

const (
	MinYear = 1800
	MaxYear = 2045

	// Samples computed per call once a series has crossed into a new year.
	chunkHours = 24
	// Steps other than one hour may only cover a single day.
	maxSubHourlySpan = 24
)

// Paths locates the three reference datasets.
type Paths struct {
	Yearly    string // ft03
	Station   string // ft07
	Secondary string // ft08
}

// Engine predicts tides from one set of datasets. It caches the last loaded
// year and station, so it is not safe for concurrent use; create one Engine
// per worker or request.
type Engine struct {
	store    *constituents.Store
	table    *secondary.Table
	strategy secondary.Strategy
	log      *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	log      *zap.SugaredLogger
	strategy secondary.Strategy
	onLoad   func(constituents.Dataset)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *engineOptions) { o.log = log }
}

// WithStrategy picks how secondary station series are computed.
func WithStrategy(s secondary.Strategy) Option {
	return func(o *engineOptions) { o.strategy = s }
}

// WithLoadHook is called whenever a dataset is read from disk.
func WithLoadHook(f func(constituents.Dataset)) Option {
	return func(o *engineOptions) { o.onLoad = f }
}

// NewEngine creates an Engine reading paths. Nothing is read until the first
// prediction.
func NewEngine(paths Paths, opts ...Option) *Engine {
	o := engineOptions{log: zap.NewNop().Sugar(), strategy: secondary.Incremental}
	for _, opt := range opts {
		opt(&o)
	}
	hook := constituents.WithLoadHook(func(d constituents.Dataset) {
		o.log.Debugw("reading dataset", "dataset", d)
		if o.onLoad != nil {
			o.onLoad(d)
		}
	})
	// Primary stations and the references of secondary stations are cached
	// separately so that alternating between them does not thrash.
	return &Engine{
		store:    constituents.NewStore(paths.Yearly, paths.Station, hook),
		table:    secondary.NewTable(paths.Secondary, constituents.NewStore(paths.Yearly, paths.Station, hook)),
		strategy: o.strategy,
		log:      o.log,
	}
}

// SeriesQuery asks for Hours samples, Step hours apart, starting StartHour
// hours into Year.
type SeriesQuery struct {
	Station   int
	Secondary bool
	Year      int
	StartHour int
	Hours     int
	Baseline  float64
	Seasonal  bool
	// Step defaults to one hour when zero.
	Step float64
}

func (q *SeriesQuery) step() float64 {
	if q.Step == 0 {
		return 1
	}
	return q.Step
}

func (q *SeriesQuery) validate() error {
	if err := validateYear(q.Year); err != nil {
		return err
	}
	if q.Station < 1 {
		return &tideerr.InvalidInputError{Field: "station", Msg: "must be provided"}
	}
	if q.Hours < 1 {
		return &tideerr.InvalidInputError{Field: "hours", Msg: fmt.Sprintf("%d is not positive", q.Hours)}
	}
	if q.StartHour < 0 || q.StartHour >= timetricks.HoursInYear(q.Year) {
		return &tideerr.InvalidInputError{Field: "start hour", Msg: fmt.Sprintf("%d is outside %d", q.StartHour, q.Year)}
	}
	return validateStep(q.step(), q.Hours)
}

func validateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &tideerr.InvalidInputError{Field: "year", Msg: fmt.Sprintf("%d is outside %d-%d", year, MinYear, MaxYear)}
	}
	return nil
}

func validateStep(step float64, hours int) error {
	if step <= 0 || math.IsNaN(step) {
		return &tideerr.InvalidInputError{Field: "step", Msg: fmt.Sprintf("%v is not positive", step)}
	}
	if step != 1 && (step > 1 || step*float64(hours) > maxSubHourlySpan) {
		return &tideerr.InvalidInputError{Field: "step", Msg: fmt.Sprintf("a step of %v hours must be under one hour and span at most a day, not %v hours", step, step*float64(hours))}
	}
	return nil
}

// ComputeSeries returns q.Hours heights. A series that runs past the end of
// q.Year is computed up to New Year, then in day long chunks from the start
// of each following year with that year's constituents.
func (e *Engine) ComputeSeries(q SeriesQuery) ([]float64, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	step := q.step()
	year := q.Year
	t := float64(q.StartHour)

	total := float64(timetricks.HoursInYear(year))
	if t+float64(q.Hours-1)*step < total {
		return e.series(&q, year, t, q.Hours)
	}

	heights := make([]float64, 0, q.Hours)
	for len(heights) < q.Hours {
		if t >= total {
			t -= total
			year++
			total = float64(timetricks.HoursInYear(year))
			e.log.Debugw("crossing year boundary", "station", q.Station, "year", year)
		}
		n := q.Hours - len(heights)
		if left := int(math.Ceil((total - t) / step)); n > left {
			n = left
		}
		if len(heights) > 0 && n > chunkHours {
			n = chunkHours
		}
		chunk, err := e.series(&q, year, t, n)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		heights = append(heights, chunk...)
		t += float64(n) * step
	}
	return heights, nil
}

// series computes n samples without crossing a year boundary.
func (e *Engine) series(q *SeriesQuery, year int, start float64, n int) ([]float64, error) {
	if q.Secondary {
		p, err := e.table.Load(year, q.Station)
		if err != nil {
			return nil, err
		}
		return secondary.PredictSeries(&p, start, q.Baseline, q.Seasonal, n, q.step(), e.strategy)
	}
	set, err := e.store.Load(year, q.Station)
	if err != nil {
		return nil, err
	}
	return harmonic.SynthesizeSeries(&set, start, q.Baseline, q.Seasonal, n, q.step())
}

// point computes the height at hour t of year.
func (e *Engine) point(station int, isSecondary bool, year int, t, baseline float64, seasonal bool) (float64, error) {
	if isSecondary {
		p, err := e.table.Load(year, station)
		if err != nil {
			return 0, err
		}
		return secondary.PredictPoint(&p, t, baseline, seasonal)
	}
	set, err := e.store.Load(year, station)
	if err != nil {
		return 0, err
	}
	return harmonic.Synthesize(&set, t, baseline, seasonal)
}

// datum returns the MLLW datum, in height units, of a primary station or of
// a secondary station's reference.
func (e *Engine) datum(station int, isSecondary bool, year int) (float64, error) {
	if isSecondary {
		p, err := e.table.Load(year, station)
		if err != nil {
			return 0, err
		}
		return p.Reference.MLLWHeight(), nil
	}
	set, err := e.store.Load(year, station)
	if err != nil {
		return 0, err
	}
	return set.MLLWHeight(), nil
}
