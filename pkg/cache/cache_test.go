package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestTimed(t *testing.T) {
	c := NewTimed[[]byte](5 * time.Minute)

	tstart := time.Now()

	c.set("key", []byte("value"), tstart)

	got, ok := c.get("key", tstart.Add(time.Minute))
	if !ok || string(got) != "value" {
		t.Errorf("failed to get key that should not be expired")
	}

	_, ok = c.get("key", tstart.Add(10*time.Minute))
	if ok {
		t.Errorf("succeeded in getting expired key")
	}

	_, ok = c.get("key", tstart.Add(time.Minute))
	if ok {
		t.Errorf("succeeded in getting key that was previously evicted")
	}
}

func TestPurge(t *testing.T) {
	c := NewTimed[int](time.Hour)
	tstart := time.Now()
	c.set("old", 1, tstart)
	c.set("new", 2, tstart.Add(50*time.Minute))

	c.purge(tstart.Add(90 * time.Minute))
	if c.Len() != 1 {
		t.Fatalf("%d entries after purge, want 1", c.Len())
	}
	if v, ok := c.get("new", tstart.Add(90*time.Minute)); !ok || v != 2 {
		t.Errorf("lost the unexpired entry")
	}
}

func TestSetSweepsExpired(t *testing.T) {
	c := NewTimed[int](time.Hour)
	tstart := time.Now()
	for i := 0; i < 10; i++ {
		c.set(fmt.Sprint(i), i, tstart)
	}
	if c.Len() != 10 {
		t.Fatalf("%d entries, want 10", c.Len())
	}

	// Within a TTL of the last sweep nothing is dropped.
	c.set("early", 0, tstart.Add(30*time.Minute))
	if c.Len() != 11 {
		t.Errorf("%d entries before expiry, want 11", c.Len())
	}

	c.set("late", 0, tstart.Add(80*time.Minute))
	if c.Len() != 2 {
		t.Errorf("%d entries after expiry, want 2", c.Len())
	}
	if _, ok := c.get("early", tstart.Add(80*time.Minute)); !ok {
		t.Errorf("swept an unexpired entry")
	}
}
