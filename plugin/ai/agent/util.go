package agent

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/calendai/calendai/plugin/calendar"
)

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// findEventByName resolves a spoken event name against the calendar by
// case-insensitive substring match. The transport lists events earliest
// first, so when several match, the earliest upcoming one wins.
func findEventByName(events []calendar.Event, name string) (calendar.Event, bool) {
	needle := strings.ToLower(name)
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Summary), needle) {
			return event, true
		}
	}
	return calendar.Event{}, false
}

// eventView is the shape events take when handed to the LLM as context.
// Times are rendered in the user's timezone so answers come back in terms
// the user recognizes.
type eventView struct {
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end,omitempty"`
}

// eventsJSON renders events as a JSON document for prompt context.
func eventsJSON(events []calendar.Event, loc *time.Location) string {
	views := make([]eventView, 0, len(events))
	for _, event := range events {
		view := eventView{
			Summary: event.Summary,
			Start:   event.Start.In(loc).Format(time.RFC3339),
		}
		if !event.End.IsZero() {
			view.End = event.End.In(loc).Format(time.RFC3339)
		}
		views = append(views, view)
	}

	encoded, err := json.Marshal(views)
	if err != nil {
		// Only unmarshalable types can fail here, and eventView has none.
		return "[]"
	}
	return string(encoded)
}
