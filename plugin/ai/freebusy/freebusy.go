// Package freebusy resolves a calendar's busy intervals into open slots.
//
// The sweep itself is pure: given a search window, a requested duration and
// a list of busy intervals it produces the ordered candidate slots without
// touching the network, so it is testable against synthetic interval lists.
package freebusy

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidDuration is returned when the requested slot duration is zero
// or negative. This is caller error, rejected before the sweep runs.
var ErrInvalidDuration = errors.New("slot duration must be positive")

// BusyInterval is a time range marked occupied on the calendar. Intervals
// arrive unsorted and possibly overlapping.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Window bounds a free-slot search.
type Window struct {
	Start time.Time
	End   time.Time
}

// Slot is an open interval of exactly the requested duration. Slots never
// overlap a busy interval and never start before "now".
type Slot struct {
	Start time.Time
	End   time.Time
}

// FindSlots sweeps the window and returns candidate slots, earliest first.
//
// Each gap between busy intervals yields at most one slot, truncated to
// exactly duration so downstream code always deals in uniform-size slots.
// A fully booked or empty window yields an empty result, not an error.
// The sweep recomputes from scratch on every call; identical inputs give
// identical output.
func FindSlots(window Window, duration time.Duration, now time.Time, busy []BusyInterval) ([]Slot, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	// Never propose a slot in the past.
	cursor := window.Start
	if now.After(cursor) {
		cursor = now
	}
	if !cursor.Before(window.End) {
		return nil, nil
	}

	// Sort a copy; the caller's slice order is not ours to change.
	sorted := make([]BusyInterval, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var slots []Slot

	emit := func(gapStart, gapEnd time.Time) {
		if gapEnd.Sub(gapStart) >= duration {
			slots = append(slots, Slot{Start: gapStart, End: gapStart.Add(duration)})
		}
	}

	for _, b := range sorted {
		if !cursor.Before(window.End) {
			break
		}
		if cursor.Before(b.Start) {
			gapEnd := b.Start
			if gapEnd.After(window.End) {
				gapEnd = window.End
			}
			emit(cursor, gapEnd)
		}
		// Overlapping busy intervals are not pre-merged; advancing the
		// cursor past each interval's end produces the correct gaps.
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if cursor.Before(window.End) {
		emit(cursor, window.End)
	}

	return slots, nil
}

// Source supplies the busy intervals for a window, typically backed by the
// calendar transport's free/busy query.
type Source func(ctx context.Context, window Window) ([]BusyInterval, error)

// Resolver binds a busy-interval source to the sweep. One Resolve call
// issues a single query covering the whole window.
type Resolver struct {
	source Source
}

// NewResolver creates a resolver over the given source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve fetches busy intervals for the window and sweeps them into slots.
func (r *Resolver) Resolve(ctx context.Context, window Window, duration time.Duration, now time.Time) ([]Slot, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	busy, err := r.source(ctx, window)
	if err != nil {
		return nil, errors.Wrap(err, "query free/busy")
	}

	return FindSlots(window, duration, now, busy)
}
