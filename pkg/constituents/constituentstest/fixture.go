// Package constituentstest writes small reference datasets in the exact
// fixed-width formats read by package constituents and package secondary.
package constituentstest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spencer-p/tidepredict/pkg/constituents"
)

// Speeds is a realistic speed table in degrees per hour. The slow annual
// and semi-annual terms sit at indices 14 and 16.
var Speeds = [constituents.Count]float64{
	28.9841042, 30.0, 28.4397295, 15.0410686, 57.9682084, 13.9430356,
	86.9523127, 44.0251729, 60.0, 57.4238337, 28.5125831, 90.0,
	27.9682084, 27.8953548, 0.0410686, 29.4556253, 0.0821373, 14.4966939,
	15.5854433, 0.5443747, 15.0, 16.1391017, 1.0158958, 1.0980331,
	13.4715145, 13.3986609, 29.9589333, 30.0410667, 12.8542862, 14.9589314,
	31.0158958, 43.4761563, 29.5284789, 42.9271398, 30.0821373, 115.9364166,
	58.9841042,
}

// Year builds plausible node factors and phase leads for year.
func Year(year int) constituents.Yearly {
	y := constituents.Yearly{Year: year}
	for i := range y.NodeFactor {
		y.NodeFactor[i] = 0.95 + 0.001*float64((year+i)%90)
		y.PhaseLead[i] = float64((year*7+i*31)%3600) / 10
	}
	return y
}

// Station builds a station dominated by a semidiurnal and a diurnal term,
// with small seasonal amplitudes.
func Station(id, mllw int) constituents.Station {
	st := constituents.Station{ID: id, MLLW: mllw, Speed: Speeds}
	scale := 1 + 0.1*float64(id)
	amps := map[int]float64{0: 1.2, 1: 0.4, 2: 0.25, 3: 0.6, 5: 0.35, 14: 0.08, 16: 0.05}
	for i := range st.Amplitude {
		a, ok := amps[i]
		if !ok {
			a = 0.01
		}
		st.Amplitude[i] = math.Round(a*scale*1000) / 1000
		st.Epoch[i] = float64((id*113+i*47)%3600) / 10
	}
	return st
}

// FormatYearly encodes consecutive years, starting from years[0].Year.
func FormatYearly(years ...constituents.Yearly) string {
	var b strings.Builder
	for _, y := range years {
		for first := 0; first < constituents.Count; first += 8 {
			fmt.Fprintf(&b, "%4d    ", y.Year)
			for i := first; i < first+8 && i < constituents.Count; i++ {
				fmt.Fprintf(&b, "%4d%4d", raw(y.NodeFactor[i], 1000), raw(y.PhaseLead[i], 10))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatStations encodes the shared speed table followed by stations, whose
// ids must run 1, 2, 3...
func FormatStations(stations ...constituents.Station) string {
	var b strings.Builder
	speeds := Speeds
	if len(stations) > 0 {
		speeds = stations[0].Speed
	}
	for first := 0; first < constituents.Count; first += 7 {
		for i := first; i < first+7 && i < constituents.Count; i++ {
			fmt.Fprintf(&b, "%10d", raw(speeds[i], 10000000))
		}
		b.WriteString("\n")
	}
	for _, st := range stations {
		fmt.Fprintf(&b, "%3d TEST STATION %d\n", st.ID, st.ID)
		fmt.Fprintf(&b, "%6d\n", st.MLLW)
		for first := 0; first < constituents.Count; first += 7 {
			fmt.Fprintf(&b, "%3d%5s", st.ID, "")
			for i := first; i < first+7 && i < constituents.Count; i++ {
				fmt.Fprintf(&b, "%5d%4d", raw(st.Amplitude[i], 1000), raw(st.Epoch[i], 10))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Files are the paths of datasets written by Write.
type Files struct {
	Yearly    string
	Station   string
	Secondary string
}

// Write stores the datasets in a temporary directory owned by t. An empty
// secondary table is written when secondary is "".
func Write(t testing.TB, yearly, stations, secondary string) Files {
	t.Helper()
	dir := t.TempDir()
	files := Files{
		Yearly:    filepath.Join(dir, "ft03.dta"),
		Station:   filepath.Join(dir, "ft07.dta"),
		Secondary: filepath.Join(dir, "ft08.dta"),
	}
	for path, content := range map[string]string{
		files.Yearly:    yearly,
		files.Station:   stations,
		files.Secondary: secondary,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return files
}

// Standard writes years first..last and stations 1..numStations built with
// Year and Station, plus the given secondary table.
func Standard(t testing.TB, first, last, numStations int, secondary string) Files {
	t.Helper()
	var years []constituents.Yearly
	for y := first; y <= last; y++ {
		years = append(years, Year(y))
	}
	var stations []constituents.Station
	for id := 1; id <= numStations; id++ {
		stations = append(stations, Station(id, 1000*id+250))
	}
	return Write(t, FormatYearly(years...), FormatStations(stations...), secondary)
}

func raw(v, scale float64) int {
	return int(math.Round(v * scale))
}
