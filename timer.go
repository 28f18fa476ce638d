package ansiplay

import (
	"fmt"
	"strings"
	"time"
)

// Timer records named laps for the debug trailer.
type Timer struct {
	clock Clock
	last  time.Time
	laps  []lap
}

type lap struct {
	name string
	took time.Duration
}

// NewTimer starts a timer on c.
func NewTimer(c Clock) *Timer {
	return &Timer{clock: c, last: c.Now()}
}

// End closes the current lap under name and starts the next one.
func (t *Timer) End(name string) time.Duration {
	now := t.clock.Now()
	took := now.Sub(t.last)
	t.last = now
	t.laps = append(t.laps, lap{name: name, took: took})
	return took
}

// Total is the sum of all laps.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, l := range t.laps {
		total += l.took
	}
	return total
}

func (t *Timer) String() string {
	var sb strings.Builder
	for _, l := range t.laps {
		fmt.Fprintf(&sb, "%s: %.3fs\t", l.name, l.took.Seconds())
	}
	return sb.String()
}
