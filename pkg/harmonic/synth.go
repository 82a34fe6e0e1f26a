// Package harmonic evaluates the tide of a primary station from its
// constituents and locates the highs and lows of the resulting curve.
//
// Heights follow the NOS convention
//
//	h(t) = z0 + sum f[i] * A[i] * cos(speed[i]*t + (V+u)[i] - epoch[i])
//
// with t in hours since the start of the year the constituents were loaded
// for and all angles in degrees.
package harmonic

import (
	"fmt"
	"math"

	"github.com/spencer-p/tidepredict/pkg/constituents"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

// Indices of the annual and semi-annual terms dropped when seasonal
// adjustment is off.
const (
	seasonalA = 14
	seasonalB = 16
)

// ErrUnloaded is returned for constituent sets that have not been loaded.
var ErrUnloaded = &tideerr.InvalidInputError{Field: "constituents", Msg: "year and station must be loaded first"}

// Synthesize returns the height at t hours into the loaded year, starting
// from baseline.
func Synthesize(set *constituents.Set, t, baseline float64, seasonal bool) (float64, error) {
	if !set.Loaded() {
		return 0, ErrUnloaded
	}
	return height(set, t, baseline, seasonal), nil
}

// SynthesizeSeries evaluates count heights at start + k*step. Each value is
// identical to the corresponding Synthesize call.
func SynthesizeSeries(set *constituents.Set, start, baseline float64, seasonal bool, count int, step float64) ([]float64, error) {
	if !set.Loaded() {
		return nil, ErrUnloaded
	}
	if count < 0 {
		return nil, &tideerr.InvalidInputError{Field: "count", Msg: fmt.Sprintf("%d is negative", count)}
	}
	heights := make([]float64, count)
	for k := range heights {
		heights[k] = height(set, start+float64(k)*step, baseline, seasonal)
	}
	return heights, nil
}

// height is the unchecked harmonic sum.
func height(set *constituents.Set, t, z0 float64, seasonal bool) float64 {
	z := z0
	for i := 0; i < constituents.Count; i++ {
		if !seasonal && (i == seasonalA || i == seasonalB) {
			continue
		}
		arg := set.Speed[i]*t + set.PhaseLead[i] - set.Epoch[i]
		z += set.NodeFactor[i] * set.Amplitude[i] * math.Cos(math.Pi/180*arg)
	}
	return z
}
