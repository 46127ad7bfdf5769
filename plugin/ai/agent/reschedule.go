package agent

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/calendai/calendai/internal/observability"
	"github.com/calendai/calendai/plugin/ai/extract"
	"github.com/calendai/calendai/plugin/calendar"
	"github.com/calendai/calendai/server/timezone"
)

const (
	msgRescheduleUnclear = "I'm not sure which event you want to move or when to move it to. Could you be more specific?"
	msgRescheduleFailed  = "Sorry, I couldn't reschedule that event. Please try again."
)

// handleReschedule moves an existing event to a new time. Extraction and
// the event listing are independent, so they run concurrently.
func (a *Assistant) handleReschedule(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	var (
		details *extract.RescheduleDetails
		events  []calendar.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = a.extractor.Reschedule(gctx, req.Message, a.now())
		return err
	})
	g.Go(func() error {
		var err error
		events, err = a.calendar.ListEvents(gctx, req.Credentials)
		return err
	})
	if err := g.Wait(); err != nil {
		reqCtx.Error("reschedule preparation failed", err)
		return Result{Message: msgRescheduleFailed}
	}

	if details == nil {
		return Result{Message: msgRescheduleUnclear}
	}

	target, found := findEventByName(events, details.EventName)
	if !found {
		return Result{Message: fmt.Sprintf("I couldn't find an event called %q to reschedule.", details.EventName)}
	}

	// No explicit new end: keep the event's current length.
	newEnd := details.NewEnd
	if newEnd.IsZero() {
		duration := target.Duration()
		if duration <= 0 {
			duration = a.eventDuration
		}
		newEnd = details.NewStart.Add(duration)
	}

	moved, err := a.calendar.RescheduleEvent(ctx, req.Credentials, target.ID, details.NewStart, newEnd)
	if err != nil {
		reqCtx.Error("event reschedule failed", err)
		return Result{Message: msgRescheduleFailed}
	}

	formatted := timezone.FormatEventTime(moved.Start, a.loc(req))
	return Result{
		Success: true,
		Message: fmt.Sprintf("OK, I've rescheduled %q to %s.", moved.Summary, formatted),
	}
}
