package sunset

import (
	"testing"
	"time"
)

func santaCruz(t *testing.T) Place {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("no time zone database: %v", err)
	}
	return Place{Lat: 36.9741, Long: -122.0308, Location: loc}
}

func TestGetSunEvents(t *testing.T) {
	place := santaCruz(t)
	start := time.Date(2023, time.June, 21, 0, 0, 0, 0, place.Location)
	events := GetSunEvents(start, 3*24*time.Hour, place)

	if len(events) != 6 {
		t.Fatalf("got %d events, want 6: %v", len(events), events)
	}
	for i, e := range events {
		if want := i%2 == 0; bool(e.Event) != want {
			t.Errorf("event %d is %s", i, e.String())
		}
		if i > 0 && !e.Time.After(events[i-1].Time) {
			t.Errorf("event %d at %v is not after %v", i, e.Time, events[i-1].Time)
		}
	}
	rise := events[0].Time
	if rise.Day() != 21 || rise.Hour() < 5 || rise.Hour() > 6 {
		t.Errorf("first sunrise at %v, want early on the 21st", rise)
	}
}

func TestIsDaylight(t *testing.T) {
	place := santaCruz(t)
	day := func(h int) time.Time {
		return time.Date(2023, time.June, 21, h, 0, 0, 0, place.Location)
	}
	events := GetSunEvents(day(0), 24*time.Hour, place)

	table := []struct {
		at   time.Time
		want bool
	}{
		{day(0), false},
		{day(3), false},
		{day(12), true},
		{day(18), true},
		{day(23), false},
	}
	for _, tc := range table {
		if got := events.IsDaylight(tc.at); got != tc.want {
			t.Errorf("IsDaylight(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestIsDaylightEmpty(t *testing.T) {
	var events SunEvents
	if events.IsDaylight(time.Now()) {
		t.Errorf("no events but daylight")
	}
}
