package tide

import (
	"fmt"
	"strings"
	"time"

	"github.com/spencer-p/tidepredict/pkg/tideerr"
	"github.com/spencer-p/tidepredict/pkg/timetricks"
)

// Mode selects what Predict computes.
type Mode string

const (
	// Hourly is a series of Hours samples, Step hours apart, from the start
	// of the hour containing Start.
	Hourly Mode = "hourly"
	// Single is one sample at exactly Start.
	Single Mode = "single"
	// MLLW is the mean lower low water datum of the station.
	MLLW Mode = "mllw"
)

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case Hourly, Single, MLLW:
		return m, nil
	case "":
		return Hourly, nil
	default:
		return "", &tideerr.InvalidInputError{Field: "mode", Msg: fmt.Sprintf("unknown mode %q", s)}
	}
}

// Request is one prediction for one station.
type Request struct {
	Mode    Mode
	Station int
	// Start is read as wall-clock time in its own location, which should be
	// the station's local standard time.
	Start    time.Time
	Hours    int
	Baseline float64
	// AddMLLW reports heights above MLLW instead of above mean tide level.
	AddMLLW   bool
	Seasonal  bool
	Secondary bool
	// Step defaults to one hour when zero.
	Step float64
}

func (r *Request) validate() error {
	switch r.Mode {
	case Hourly, Single, MLLW:
	default:
		return &tideerr.InvalidInputError{Field: "mode", Msg: fmt.Sprintf("unknown mode %q", r.Mode)}
	}
	if r.Station < 1 {
		return &tideerr.InvalidInputError{Field: "station", Msg: "must be provided"}
	}
	if r.Start.IsZero() {
		return &tideerr.InvalidInputError{Field: "start", Msg: "must be provided"}
	}
	if err := validateYear(r.Start.Year()); err != nil {
		return err
	}
	if r.Mode != Hourly {
		return nil
	}
	if r.Hours < 1 {
		return &tideerr.InvalidInputError{Field: "hours", Msg: fmt.Sprintf("%d is not positive", r.Hours)}
	}
	step := r.Step
	if step == 0 {
		step = 1
	}
	return validateStep(step, r.Hours)
}

// Result is the answer to a Request.
type Result struct {
	// Predictions is empty in MLLW mode.
	Predictions Predictions
	// Datum is the MLLW of the station, or of the reference station of a
	// secondary station.
	Datum float64
}

// Predict validates req, then loads the constituents it needs and computes
// the result. Nothing is read from disk for an invalid request.
func (e *Engine) Predict(req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	year := req.Start.Year()

	datum, err := e.datum(req.Station, req.Secondary, year)
	if err != nil {
		return Result{}, err
	}
	res := Result{Datum: datum}
	if req.Mode == MLLW {
		return res, nil
	}

	// Secondary heights come out on the reference station's MLLW datum, so
	// the datum is taken away when it was not asked for. Primary heights are
	// relative to mean tide level and only get it when asked.
	baseline := req.Baseline
	switch {
	case !req.Secondary && req.AddMLLW:
		baseline += datum
	case req.Secondary && !req.AddMLLW:
		baseline -= datum
	}

	hour := timetricks.HourOfYear(req.Start)
	loc := req.Start.Location()

	if req.Mode == Single {
		z, err := e.point(req.Station, req.Secondary, year, hour, baseline, req.Seasonal)
		if err != nil {
			return Result{}, err
		}
		res.Predictions = Predictions{{Time: Time(req.Start), Height: Height(z)}}
		return res, nil
	}

	q := SeriesQuery{
		Station:   req.Station,
		Secondary: req.Secondary,
		Year:      year,
		StartHour: int(hour),
		Hours:     req.Hours,
		Baseline:  baseline,
		Seasonal:  req.Seasonal,
		Step:      req.Step,
	}
	heights, err := e.ComputeSeries(q)
	if err != nil {
		return Result{}, err
	}
	step := q.step()
	res.Predictions = make(Predictions, len(heights))
	for k, z := range heights {
		at := timetricks.AtHour(year, float64(q.StartHour)+float64(k)*step, loc)
		res.Predictions[k] = Prediction{Time: Time(at), Height: Height(z)}
	}
	e.log.Debugw("predicted", "station", req.Station, "secondary", req.Secondary,
		"year", year, "start_hour", q.StartHour, "samples", len(heights))
	return res, nil
}
