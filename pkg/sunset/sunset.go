// Package sunset finds sunrises and sunsets so that tide predictions can be
// marked as falling in daylight or not.
package sunset

import (
	"math"
	"sort"
	"time"

	"github.com/keep94/sunrise"

	"github.com/spencer-p/tidepredict/pkg/timetricks"
)

// Searching further than this for the first sunrise means the sun does not
// rise (polar night or midnight sun).
const maxDaySearch = 3

// GetSunEvents returns the ordered sunrises and sunsets of every day touched
// by [start, start+duration) in the given place. The first result is always
// a sunrise. Nothing is returned where the sun does not rise and set.
func GetSunEvents(start time.Time, duration time.Duration, place Place) SunEvents {
	start = start.In(place.Location)
	var s sunrise.Sunrise
	s.Around(place.Lat, place.Long, start)

	// The sunrise package is not very clean with its dates, so walk to the
	// day we asked for.
	for i := 0; !timetricks.SameDay(start, s.Sunrise()); i++ {
		if i == maxDaySearch || s.Sunrise().IsZero() {
			return nil
		}
		if s.Sunrise().Before(start) {
			s.AddDays(1)
		} else {
			s.AddDays(-1)
		}
	}

	end := start.Add(duration)
	numDays := int(math.Ceil(duration.Hours()/24)) + 1
	ret := make(SunEvents, 0, numDays*2)
	for i := 0; i < numDays && s.Sunrise().Before(end); i++ {
		ret = append(ret,
			SunEvent{s.Sunrise().In(place.Location), Sunrise},
			SunEvent{s.Sunset().In(place.Location), Sunset})
		s.AddDays(1)
	}
	return ret
}

// IsDaylight reports whether t falls between a sunrise and the following
// sunset in events.
func (events SunEvents) IsDaylight(t time.Time) bool {
	i, ok := events.lastBefore(t)
	return ok && events[i].Event == Sunrise
}

// lastBefore returns the index of the last event at or before t.
func (events SunEvents) lastBefore(t time.Time) (int, bool) {
	// sort.Search finds the first event after t; the one before it is ours.
	i := sort.Search(len(events), func(i int) bool {
		return events[i].Time.After(t)
	}) - 1
	return i, i >= 0
}
