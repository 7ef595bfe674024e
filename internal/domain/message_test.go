package domain

import (
	"testing"
	"time"
)

func TestIDClock_StrictlyIncreasingWithinSameMillisecond(t *testing.T) {
	var clock IDClock
	now := time.UnixMilli(1_700_000_000_000)

	prev := ""
	for i := 0; i < 50; i++ {
		id := clock.Next(now)
		if id <= prev {
			t.Fatalf("id %q is not greater than %q", id, prev)
		}
		prev = id
	}
}

func TestIDClock_ClockGoingBackwards(t *testing.T) {
	var clock IDClock
	first := clock.Next(time.UnixMilli(2_000))
	second := clock.Next(time.UnixMilli(1_000))

	if second <= first {
		t.Errorf("Expected %q > %q after clock step back", second, first)
	}
}

func TestIDClock_Observe(t *testing.T) {
	var restored IDClock
	var original IDClock
	last := ""
	for i := 0; i < 3; i++ {
		last = original.Next(time.UnixMilli(5_000))
	}

	restored.Observe(last)
	next := restored.Next(time.UnixMilli(4_000))
	if next <= last {
		t.Errorf("Expected id after restore %q > %q", next, last)
	}

	restored.Observe("garbage")
	if again := restored.Next(time.UnixMilli(4_000)); again <= next {
		t.Errorf("Observe of a malformed id must not move the clock back")
	}
}

func TestParseMessageID(t *testing.T) {
	ms, seq, ok := ParseMessageID("0000000001234-0007-abcdefgh")
	if !ok || ms != 1234 || seq != 7 {
		t.Errorf("Unexpected parse result: %d %d %v", ms, seq, ok)
	}

	if _, _, ok := ParseMessageID("nope"); ok {
		t.Error("Expected malformed id to fail")
	}
}
