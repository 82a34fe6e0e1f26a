// Package constituents reads the harmonic constants of primary tide stations
// from the yearly (node factor / phase lead) and station (speed, amplitude,
// epoch, MLLW) datasets.
//
// A Store remembers the last year and station it loaded and only goes back
// to disk when asked for a different one. It is not safe for concurrent use;
// give each worker its own Store.
package constituents

import (
	"fmt"
	"os"

	"github.com/spencer-p/tidepredict/pkg/fixedwidth"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

// Store loads and caches constituents for one year and one station at a
// time.
type Store struct {
	yearlyPath  string
	stationPath string
	onLoad      func(Dataset)

	yearly  Yearly
	station Station
	// speeds are shared by all stations and read once.
	speeds *[Count]float64
}

// Option configures a Store.
type Option func(*Store)

// WithLoadHook calls f every time the Store actually reads a dataset.
func WithLoadHook(f func(Dataset)) Option {
	return func(s *Store) {
		s.onLoad = f
	}
}

// NewStore creates an empty Store reading the given yearly and station
// datasets.
func NewStore(yearlyPath, stationPath string, opts ...Option) *Store {
	empty := Unloaded()
	s := &Store{
		yearlyPath:  yearlyPath,
		stationPath: stationPath,
		yearly:      empty.Yearly,
		station:     empty.Station,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsLoaded reports whether Load(year, station) would be served from memory.
func (s *Store) IsLoaded(year, station int) bool {
	return s.yearly.Year == year && year != -1 &&
		s.station.ID == station && station >= 1
}

// Load makes sure both year and station are loaded and returns a copy of
// them.
func (s *Store) Load(year, station int) (Set, error) {
	y, err := s.LoadYear(year)
	if err != nil {
		return Set{}, err
	}
	st, err := s.LoadStation(station)
	if err != nil {
		return Set{}, err
	}
	return Set{Yearly: y, Station: st}, nil
}

// LoadYear returns the node factors and phase leads of year, reading the
// yearly dataset only if year is not the one already held. A failed load
// leaves the previous year in place.
func (s *Store) LoadYear(year int) (Yearly, error) {
	if s.yearly.Year == year && year != -1 {
		return s.yearly, nil
	}
	s.hook(YearlyDataset)

	f, err := os.Open(s.yearlyPath)
	if err != nil {
		return Yearly{}, fmt.Errorf("opening yearly constituents: %w", err)
	}
	defer f.Close()

	y, err := readYearly(newLineReader(s.yearlyPath, f), year)
	if err != nil {
		return Yearly{}, err
	}
	s.yearly = y
	return y, nil
}

func readYearly(r *lineReader, year int) (Yearly, error) {
	y := Yearly{Year: year}

	line, err := r.next()
	if err != nil {
		return y, err
	}
	first, err := fixedwidth.Int(line, 0, yearTagWidth)
	if err != nil {
		return y, r.errorf(err, "reading first year")
	}
	if year < first {
		return y, &tideerr.LookupError{Dataset: r.name, Key: "year", Value: year}
	}

	// The block for year starts at this line number.
	if err := r.skipTo((year-first)*linesPerYear + 1); err != nil {
		return y, err
	}
	for i, rec := range yearlyRecords {
		if i > 0 || year != first {
			if line, err = r.next(); err != nil {
				return y, err
			}
		}
		tag, err := fixedwidth.Int(line, 0, yearTagWidth)
		if err != nil {
			return y, r.errorf(err, "reading year tag")
		}
		if tag != year {
			return y, r.errorf(nil, fmt.Sprintf("found year %d where %d was expected", tag, year))
		}
		if err := rec.Decode(line, y.NodeFactor[:], y.PhaseLead[:]); err != nil {
			return y, r.errorf(err, "decoding node factors")
		}
	}
	return y, nil
}

// LoadStation returns the harmonic constants of station id, reading the
// station dataset only if id is not the one already held. A failed load
// leaves the previous station in place.
func (s *Store) LoadStation(id int) (Station, error) {
	if id < 1 {
		return Station{}, &tideerr.InvalidInputError{Field: "station", Msg: fmt.Sprintf("%d is not a station id", id)}
	}
	if s.station.ID == id {
		return s.station, nil
	}
	s.hook(StationDataset)

	f, err := os.Open(s.stationPath)
	if err != nil {
		return Station{}, fmt.Errorf("opening station constituents: %w", err)
	}
	defer f.Close()

	st, err := readStation(newLineReader(s.stationPath, f), id, s.speeds)
	if err != nil {
		return Station{}, err
	}
	if s.speeds == nil {
		speeds := st.Speed
		s.speeds = &speeds
	}
	s.station = st
	return st, nil
}

// readStation reads station id. When speeds is non-nil the speed table is
// taken from it instead of being decoded again.
func readStation(r *lineReader, id int, speeds *[Count]float64) (Station, error) {
	st := Station{ID: id}

	for _, rec := range speedRecords {
		line, err := r.next()
		if err != nil {
			return st, err
		}
		if speeds != nil {
			continue
		}
		if err := rec.Decode(line, st.Speed[:]); err != nil {
			return st, r.errorf(err, "decoding speeds")
		}
	}
	if speeds != nil {
		st.Speed = *speeds
	}

	if err := r.skipTo(speedLines + linesPerStation*(id-1) + 1); err != nil {
		return st, err
	}
	line, err := r.next()
	if err != nil {
		return st, err
	}
	found, err := fixedwidth.Int(line, 0, stationIDWidth)
	if err != nil {
		return st, r.errorf(err, "reading station id")
	}
	if found != id {
		return st, r.errorf(nil, fmt.Sprintf("found station %d where %d was expected", found, id))
	}

	if line, err = r.next(); err != nil {
		return st, err
	}
	if st.MLLW, err = fixedwidth.Int(line, 0, mllwWidth); err != nil {
		return st, r.errorf(err, "reading MLLW")
	}

	for _, rec := range amplitudeRecords {
		line, err := r.next()
		if err != nil {
			return st, err
		}
		if err := rec.Decode(line, st.Amplitude[:], st.Epoch[:]); err != nil {
			return st, r.errorf(err, "decoding amplitudes")
		}
	}
	return st, nil
}

func (s *Store) hook(d Dataset) {
	if s.onLoad != nil {
		s.onLoad(d)
	}
}
