package agent

import (
	"context"
	"fmt"

	"github.com/calendai/calendai/internal/observability"
	"github.com/calendai/calendai/plugin/calendar"
	"github.com/calendai/calendai/server/timezone"
)

const (
	msgScheduleUnclear = "I'm sorry, I couldn't figure out the details for that event. Could you be a bit more specific about the title and time?"
	msgScheduleFailed  = "Sorry, I wasn't able to schedule that event on your calendar. Please try again."
)

// handleSchedule creates a new event from a scheduling description.
func (a *Assistant) handleSchedule(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	details, err := a.extractor.Event(ctx, req.Message, a.now())
	if err != nil {
		reqCtx.Error("event extraction failed", err)
		return Result{Message: msgScheduleFailed}
	}
	if details == nil {
		// Under-specified command; ask instead of guessing.
		return Result{Message: msgScheduleUnclear}
	}

	created, err := a.calendar.CreateEvent(ctx, req.Credentials, calendar.EventDraft{
		Summary:  details.Title,
		Start:    details.StartTime,
		End:      details.EndTime,
		Timezone: req.Timezone,
	})
	if err != nil {
		reqCtx.Error("event creation failed", err)
		return Result{Message: msgScheduleFailed}
	}

	formatted := timezone.FormatEventTime(created.Start, a.loc(req))
	return Result{
		Success: true,
		Message: fmt.Sprintf("OK, I've scheduled %q for you on %s.", created.Summary, formatted),
	}
}
