package harmonic

import (
	"github.com/spencer-p/tidepredict/pkg/constituents"
	"github.com/spencer-p/tidepredict/pkg/tideerr"
)

// Resolution is the step, in hours, of the extrema search (3 minutes).
const Resolution = 0.05

// A curve that stays flat this long is treated as having no extrema.
const maxFlatSteps = int(24 / Resolution)

// Bracket is the high and low tide surrounding a time. Times are hours into
// the loaded year and may fall outside it.
type Bracket struct {
	HighHeight, HighTime float64
	LowHeight, LowTime   float64
}

// FindBracket walks away from t in Resolution steps to find the turning
// points on either side of it. The nearer turning point before t decides
// which of the two is the high.
//
// The search is deliberately step based. A derivative based search would need
// the curve blended across the discontinuity at New Year.
func FindBracket(set *constituents.Set, t, baseline float64, seasonal bool) (Bracket, error) {
	if !set.Loaded() {
		return Bracket{}, ErrUnloaded
	}
	h := func(t float64) float64 { return height(set, t, baseline, seasonal) }

	z := h(t)
	t1 := t - Resolution
	z1 := h(t1)
	for flat := 0; z1 == z; flat++ {
		if flat == maxFlatSteps {
			return Bracket{}, &tideerr.DegenerateExtremaError{Time: t, Height: z}
		}
		t1 -= Resolution
		z1 = h(t1)
	}

	var b Bracket
	if z1 < z {
		// Falling to the left: a low behind, a high ahead.
		z2 := z
		for z1 < z2 {
			z2 = z1
			t1 -= Resolution
			z1 = h(t1)
		}
		b.LowHeight, b.LowTime = z2, t1+Resolution

		z1, t1 = z, t
		for z1 > z2 {
			z2 = z1
			t1 += Resolution
			z1 = h(t1)
		}
		b.HighHeight, b.HighTime = z2, t1-Resolution
	} else {
		// Rising to the left: a high behind, a low ahead.
		z2 := z
		for z1 > z2 {
			z2 = z1
			t1 -= Resolution
			z1 = h(t1)
		}
		b.HighHeight, b.HighTime = z2, t1+Resolution

		z1, t1 = z, t
		for z1 < z2 {
			z2 = z1
			t1 += Resolution
			z1 = h(t1)
		}
		b.LowHeight, b.LowTime = z2, t1-Resolution
	}
	return b, nil
}
