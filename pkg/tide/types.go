package tide

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const predTimeFormat = "2006-01-02 15:04"

// Prediction is the water level at one time.
type Prediction struct {
	// Local (station standard) time of the sample
	Time Time `json:"t"`
	// Height in the datasets' height unit
	Height Height `json:"v"`
	// Set by handlers that know where the station is.
	Daylight *bool `json:"daylight,omitempty"`
}

// Verify the custom types round trip through JSON.
var _ json.Marshaler = Time{}
var _ json.Unmarshaler = &Time{}
var _ json.Marshaler = Height(0)
var _ json.Unmarshaler = new(Height)

// Predictions is a time series of Prediction.
type Predictions []Prediction

// Heights strips the times off p.
func (p Predictions) Heights() []float64 {
	h := make([]float64, len(p))
	for i := range p {
		h[i] = float64(p[i].Height)
	}
	return h
}

// Time is written as a bare wall clock, the way NOAA serves predictions. The
// zone is not part of the wire form: decoding yields that wall clock in UTC,
// and WallIn puts it back in the station's zone.
type Time time.Time

// WallIn returns the same wall clock reading in loc.
func (t Time) WallIn(loc *time.Location) time.Time {
	w := time.Time(t)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(predTimeFormat))
}

func (t *Time) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		return fmt.Errorf("prediction time %q not string: %w", buf, err)
	}
	parsed, err := time.ParseInLocation(predTimeFormat, s, time.UTC)
	if err != nil {
		return fmt.Errorf("prediction time %q not in fmt %q: %w", s, predTimeFormat, err)
	}
	*t = Time(parsed)
	return nil
}

type Height float64

// MarshalJSON writes three decimals, the precision of the tabulated amplitudes.
func (h Height) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(h), 'f', 3, 64), nil
}

// UnmarshalJSON accepts a number or, as NOAA serves it, a quoted number.
func (h *Height) UnmarshalJSON(buf []byte) error {
	var s string
	if err := json.Unmarshal(buf, &s); err != nil {
		var f float64
		if err := json.Unmarshal(buf, &f); err != nil {
			return fmt.Errorf("water height %q not a number: %w", buf, err)
		}
		*h = Height(f)
		return nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("water height %q not a float: %w", s, err)
	}
	*h = Height(parsed)
	return nil
}

func (p Prediction) String() string {
	s := fmt.Sprintf("%s %8.3f", time.Time(p.Time).Format(predTimeFormat), float64(p.Height))
	if p.Daylight != nil && *p.Daylight {
		s += " day"
	}
	return s
}
