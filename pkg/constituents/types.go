package constituents

// Count is the number of harmonic constituents every dataset tabulates.
const Count = 37

// Dataset names one of the reference files a Store reads.
type Dataset string

const (
	YearlyDataset  Dataset = "yearly"
	StationDataset Dataset = "station"
)

// Yearly holds the node factors and phase leads (V+u, degrees) of one year.
type Yearly struct {
	Year       int
	NodeFactor [Count]float64
	PhaseLead  [Count]float64
}

// Station holds the harmonic constants of one primary station. Speed is the
// same table for every station and is in degrees per hour.
type Station struct {
	ID int
	// MLLW is the mean lower low water datum in thousandths of the height
	// unit.
	MLLW      int
	Speed     [Count]float64
	Amplitude [Count]float64
	Epoch     [Count]float64
}

// Set is everything needed to synthesize one primary station's tide over
// one year.
type Set struct {
	Yearly
	Station
}

// Unloaded returns the sentinel Set that no synthesis accepts.
func Unloaded() Set {
	return Set{
		Yearly:  Yearly{Year: -1},
		Station: Station{ID: -1},
	}
}

// Loaded reports whether both the year and the station have been filled in.
func (s *Set) Loaded() bool {
	return s.ID >= 1 && s.Year != -1
}

// MLLWHeight is the MLLW datum in height units.
func (s *Station) MLLWHeight() float64 {
	return float64(s.MLLW) / 1000
}
