package secondary

import (
	"fmt"

	"github.com/spencer-p/tidepredict/pkg/harmonic"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

// Fixed number of reference-time refinements. The count was chosen
// empirically and convergence is not checked.
const refinements = 5

// ErrNotLoaded is returned for Params that did not come from Table.Load.
var ErrNotLoaded = &tideerr.InvalidInputError{Field: "secondary station", Msg: "station and reference constituents must be loaded first"}

// Strategy selects how PredictSeries finds the high and low around each
// sample.
type Strategy int

const (
	// Incremental reuses the previous bracket until the reference time has
	// passed both of its extrema.
	Incremental Strategy = iota
	// Pointwise predicts every sample independently with PredictPoint.
	Pointwise
)

func (s Strategy) String() string {
	switch s {
	case Incremental:
		return "incremental"
	case Pointwise:
		return "pointwise"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// PredictPoint returns the height at the secondary station locT hours into
// the loaded year.
func PredictPoint(p *Params, locT, baseline float64, seasonal bool) (float64, error) {
	if !p.Loaded() {
		return 0, ErrNotLoaded
	}
	s := solver{p: p, baseline: baseline, seasonal: seasonal}
	refT := s.initialGuess(locT)
	refZ, err := s.height(refT)
	if err != nil {
		return 0, err
	}
	b, err := s.bracket(refT)
	if err != nil {
		return 0, err
	}
	_, refZ, err = s.refine(locT, refZ, b)
	if err != nil {
		return 0, err
	}
	return s.adjust(refZ, b), nil
}

// PredictSeries returns count heights at start + k*step.
func PredictSeries(p *Params, start, baseline float64, seasonal bool, count int, step float64, strategy Strategy) ([]float64, error) {
	if !p.Loaded() {
		return nil, ErrNotLoaded
	}
	if count < 0 {
		return nil, &tideerr.InvalidInputError{Field: "count", Msg: fmt.Sprintf("%d is negative", count)}
	}
	heights := make([]float64, count)

	switch strategy {
	case Pointwise:
		for k := range heights {
			z, err := PredictPoint(p, start+float64(k)*step, baseline, seasonal)
			if err != nil {
				return nil, err
			}
			heights[k] = z
		}
		return heights, nil
	case Incremental:
	default:
		return nil, fmt.Errorf("unknown strategy %v", strategy)
	}

	s := solver{p: p, baseline: baseline, seasonal: seasonal}
	var (
		refT, refZ float64
		b          harmonic.Bracket
		err        error
	)
	for k := range heights {
		locT := start + float64(k)*step
		if k == 0 {
			refT = s.initialGuess(locT)
		} else {
			// The previous reference time, advanced by one step, is the guess.
			refT += step
		}
		if refZ, err = s.height(refT); err != nil {
			return nil, err
		}
		if k == 0 || refT > b.HighTime && refT > b.LowTime {
			if b, err = s.bracket(refT); err != nil {
				return nil, err
			}
		}
		if refT, refZ, err = s.refine(locT, refZ, b); err != nil {
			return nil, err
		}
		heights[k] = s.adjust(refZ, b)
	}
	return heights, nil
}

// solver holds what stays fixed while predicting one secondary station.
type solver struct {
	p        *Params
	baseline float64
	seasonal bool
}

// initialGuess shifts locT by the mean of the high and low water offsets.
func (s *solver) initialGuess(locT float64) float64 {
	return locT - float64(s.p.MaxTimeOffset+s.p.MinTimeOffset)/2/60
}

func (s *solver) height(refT float64) (float64, error) {
	return harmonic.Synthesize(&s.p.Reference, refT, s.baseline, s.seasonal)
}

func (s *solver) bracket(refT float64) (harmonic.Bracket, error) {
	b, err := harmonic.FindBracket(&s.p.Reference, refT, s.baseline, s.seasonal)
	if err != nil {
		return b, err
	}
	if b.HighHeight == b.LowHeight {
		return b, &tideerr.DegenerateExtremaError{Time: refT, Height: b.HighHeight}
	}
	return b, nil
}

// refine moves the reference time so that, shifted by the offset weighted
// for the reference height, it lands on locT. The bracket is not updated.
func (s *solver) refine(locT, refZ float64, b harmonic.Bracket) (refT, z float64, err error) {
	maxT := float64(s.p.MaxTimeOffset)
	minT := float64(s.p.MinTimeOffset)
	z = refZ
	for i := 0; i < refinements; i++ {
		refT = locT - (minT*(b.HighHeight-z)+maxT*(z-b.LowHeight))/((b.HighHeight-b.LowHeight)*60)
		if z, err = s.height(refT); err != nil {
			return 0, 0, err
		}
	}
	return refT, z, nil
}

// adjust moves refZ onto the reference station's MLLW datum, then applies
// the multiplicative and additive adjustments.
func (s *solver) adjust(refZ float64, b harmonic.Bracket) float64 {
	z := refZ + s.p.Reference.MLLWHeight()
	z = z * s.weigh(s.p.MaxScale, s.p.MinScale, refZ, b)
	return z + s.weigh(s.p.MaxAdditive, s.p.MinAdditive, refZ, b)
}

// weigh interpolates between the high and low water values by where refZ
// sits between the bracketing high and low.
func (s *solver) weigh(high, low, refZ float64, b harmonic.Bracket) float64 {
	return (low*(b.HighHeight-refZ) + high*(refZ-b.LowHeight)) / (b.HighHeight - b.LowHeight)
}
