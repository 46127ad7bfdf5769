package agent

import (
	"context"
	"fmt"

	"github.com/calendai/calendai/internal/observability"
)

const (
	msgCancelUnclear = "I couldn't figure out which event you want to cancel. Can you be more specific?"
	msgCancelFailed  = "Sorry, I ran into a problem cancelling that event. Please try again."
)

// handleCancel deletes the event the command refers to.
func (a *Assistant) handleCancel(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	name, err := a.extractor.EventName(ctx, req.Message)
	if err != nil {
		reqCtx.Error("event name extraction failed", err)
		return Result{Message: msgCancelFailed}
	}
	if name == "" {
		return Result{Message: msgCancelUnclear}
	}

	events, err := a.calendar.ListEvents(ctx, req.Credentials)
	if err != nil {
		reqCtx.Error("event listing failed", err)
		return Result{Message: msgCancelFailed}
	}

	target, found := findEventByName(events, name)
	if !found {
		return Result{Message: fmt.Sprintf("I couldn't find an event called %q on your calendar.", name)}
	}

	if err := a.calendar.DeleteEvent(ctx, req.Credentials, target.ID); err != nil {
		reqCtx.Error("event deletion failed", err)
		return Result{Message: fmt.Sprintf("I had trouble cancelling %q. Please try again.", target.Summary)}
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("OK, I've cancelled %q.", target.Summary),
	}
}
