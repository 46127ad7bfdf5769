// Package calendar defines the capability contract the command core needs
// from a remote calendar, plus its Google Calendar implementation. The core
// consumes only the Service interface; credentials are owned by the caller
// and are never persisted here.
package calendar

import (
	"context"
	"time"

	"github.com/calendai/calendai/plugin/ai/freebusy"
)

// Credentials is the opaque token bundle passed through from the caller.
// Refreshing is the auth layer's job.
type Credentials struct {
	AccessToken string
}

// Event is a calendar event as the core sees it. Wire events missing an ID,
// summary, or start time are unusable and filtered out before they reach
// the pipeline.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
}

// Duration returns the event's length, or 0 when the end time is unknown.
func (e Event) Duration() time.Duration {
	if e.End.IsZero() || !e.End.After(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// EventDraft describes an event to be created.
type EventDraft struct {
	Summary  string
	Start    time.Time
	End      time.Time
	Timezone string
}

// Service is the calendar transport contract. Implementations wrap a remote
// calendar API; mutations report failure through errors, which callers
// translate to user-facing apologies.
type Service interface {
	// ListEvents returns upcoming events, earliest first.
	ListEvents(ctx context.Context, creds Credentials) ([]Event, error)

	// CreateEvent inserts a new event and returns it.
	CreateEvent(ctx context.Context, creds Credentials, draft EventDraft) (*Event, error)

	// DeleteEvent removes the event with the given ID.
	DeleteEvent(ctx context.Context, creds Credentials, eventID string) error

	// RescheduleEvent moves an existing event to a new start/end.
	RescheduleEvent(ctx context.Context, creds Credentials, eventID string, newStart, newEnd time.Time) (*Event, error)

	// QueryFreeBusy returns the busy intervals inside the window, unsorted.
	QueryFreeBusy(ctx context.Context, creds Credentials, window freebusy.Window, timezone string) ([]freebusy.BusyInterval, error)
}
