package timetricks

import (
	"fmt"
	"testing"
	"time"
)

func TestHoursInYear(t *testing.T) {
	table := []struct {
		year int
		want int
	}{
		{2023, 8760},
		{2024, 8784},
		{1900, 8760},
		{2000, 8784},
	}
	for _, tc := range table {
		t.Run(fmt.Sprint(tc.year), func(t *testing.T) {
			if got := HoursInYear(tc.year); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHourOfYearIgnoresOffset(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	for _, loc := range []*time.Location{time.UTC, est} {
		got := HourOfYear(time.Date(2023, time.January, 2, 3, 30, 0, 0, loc))
		if got != 27.5 {
			t.Errorf("%s: got %v, want 27.5", loc, got)
		}
	}
}

func TestAtHourRoundTrip(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	start := time.Date(2023, time.December, 31, 23, 0, 0, 0, est)
	h := HourOfYear(start)
	if got := AtHour(2023, h, est); !got.Equal(start) {
		t.Errorf("got %s, want %s", got, start)
	}
	next := AtHour(2023, h+1, est)
	if want := time.Date(2024, time.January, 1, 0, 0, 0, 0, est); !next.Equal(want) {
		t.Errorf("got %s, want %s", next, want)
	}
}

func ExampleHourOfYear() {
	t := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	fmt.Println(HourOfYear(t))
	// Output:
	// 1440
}
