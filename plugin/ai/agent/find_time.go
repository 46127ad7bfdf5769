package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/calendai/calendai/internal/observability"
	"github.com/calendai/calendai/plugin/ai"
	"github.com/calendai/calendai/plugin/ai/freebusy"
	"github.com/calendai/calendai/server/timezone"
)

const (
	msgFindTimeUnclear  = "I'm sorry, I couldn't understand when you'd like to meet or for how long. Could you be more specific?"
	msgFindTimeFailed   = "I had trouble finding open time slots. Please try again later."
	msgFindTimeFallback = "I found some open slots, but I'm having trouble suggesting them. You can check your calendar."
)

const suggestSlotsPrompt = `You are a helpful assistant. A user wants to find a time on their calendar. You have been given a list of available time slots.

Your task is to select up to three of the best slots and present them to the user in a friendly, natural way.
If there are no slots available, inform the user politely.`

// handleFindTime searches the calendar's free/busy data for open slots and
// asks the LLM to present the best ones.
func (a *Assistant) handleFindTime(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	timeReq, err := a.extractor.TimeRequest(ctx, req.Message, a.now())
	if err != nil {
		reqCtx.Error("time request extraction failed", err)
		return Result{Message: msgFindTimeFailed}
	}
	if timeReq == nil {
		return Result{Message: msgFindTimeUnclear}
	}

	resolver := freebusy.NewResolver(func(ctx context.Context, window freebusy.Window) ([]freebusy.BusyInterval, error) {
		return a.calendar.QueryFreeBusy(ctx, req.Credentials, window, req.Timezone)
	})

	slots, err := resolver.Resolve(ctx, timeReq.Window, timeReq.Duration, a.now())
	if err != nil {
		if errors.Is(err, freebusy.ErrInvalidDuration) {
			reqCtx.Error("extraction produced an invalid slot duration", err)
		} else {
			reqCtx.Error("free/busy query failed", err)
		}
		return Result{Message: msgFindTimeFailed}
	}

	if len(slots) == 0 {
		minutes := int(timeReq.Duration / time.Minute)
		return Result{
			Success: true,
			Message: fmt.Sprintf("I couldn't find any %d-minute slots available %s. Would you like to try a different time?", minutes, timeReq.Label),
		}
	}

	suggestions, err := a.llm.Complete(ctx, ai.TextRequest{
		System: suggestSlotsPrompt,
		User: fmt.Sprintf("User's request: %s\n\nAvailable slots (JSON):\n%s",
			req.Message, slotsJSON(slots, a.loc(req))),
	})
	if err != nil || strings.TrimSpace(suggestions) == "" {
		if err != nil {
			reqCtx.Error("slot suggestion generation failed", err)
		}
		return Result{Success: true, Message: msgFindTimeFallback}
	}

	return Result{Success: true, Message: strings.TrimSpace(suggestions)}
}

// slotView is the shape open slots take when handed to the LLM. Display
// carries the slot pre-formatted in the user's timezone so suggestions can
// quote it directly.
type slotView struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Display string `json:"display"`
}

func slotsJSON(slots []freebusy.Slot, loc *time.Location) string {
	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{
			Start:   slot.Start.In(loc).Format(time.RFC3339),
			End:     slot.End.In(loc).Format(time.RFC3339),
			Display: timezone.FormatSlot(slot.Start, slot.End, loc),
		})
	}
	encoded, err := json.Marshal(views)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
