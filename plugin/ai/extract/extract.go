// Package extract turns free text plus a reference time into structured
// scheduling values: event details, find-time requests, and reschedule
// commands. Extraction is delegated to the LLM through a strict JSON
// schema contract; this package owns the contract and its validation.
//
// An under-specified utterance is a normal outcome, reported as a nil
// result with a nil error — callers respond with a clarification question,
// never a retry. Malformed model output (notably timestamps without an
// explicit UTC offset) is a contract violation and is rejected.
package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"

	"github.com/calendai/calendai/plugin/ai/freebusy"
)

// Contract violations: the model responded, but with values the schema
// contract forbids. These fail loudly instead of being silently patched.
var (
	// ErrMissingOffset is returned for a timestamp without an explicit
	// UTC offset. Assuming local time here would corrupt every downstream
	// calculation, so the value is rejected.
	ErrMissingOffset = errors.New("timestamp lacks explicit UTC offset")

	// ErrInvalidEventTimes is returned when an extracted end time does not
	// come after the start time.
	ErrInvalidEventTimes = errors.New("event end time must be after start time")
)

// EventDetails describes an event recovered from a scheduling request.
// EndTime always comes after StartTime.
type EventDetails struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// TimeRequest describes a find-time query: how long a slot is needed and
// where to look for it. Label is a human-readable echo of the window
// ("next week") used only for messaging.
type TimeRequest struct {
	Duration time.Duration
	Window   freebusy.Window
	Label    string
}

// RescheduleDetails describes a reschedule command. NewEnd is zero when
// the model did not supply one; the caller derives it from the original
// event's duration.
type RescheduleDetails struct {
	EventName string
	NewStart  time.Time
	NewEnd    time.Time
}

// Service is the time-extraction contract consumed by the action handlers.
// Every call takes the reference timestamp ("now") that relative
// expressions are resolved against; it must be supplied fresh per request.
type Service interface {
	// Event extracts event details from a scheduling description.
	// Returns (nil, nil) when the title or start time cannot be determined.
	Event(ctx context.Context, description string, ref time.Time) (*EventDetails, error)

	// TimeRequest extracts the slot duration and search window from a
	// find-time query, applying defaults for anything absent.
	TimeRequest(ctx context.Context, query string, ref time.Time) (*TimeRequest, error)

	// Reschedule extracts the target event name and new times from a
	// reschedule command. Returns (nil, nil) when the event name or new
	// start cannot be determined.
	Reschedule(ctx context.Context, command string, ref time.Time) (*RescheduleDetails, error)

	// EventName extracts the name of the event a command refers to.
	// Returns "" when it cannot be determined.
	EventName(ctx context.Context, command string) (string, error)
}

// Policy carries the fallback values applied when extraction omits a field.
type Policy struct {
	// EventDuration is assumed when a description has no end time.
	EventDuration time.Duration
	// SlotDuration is assumed when a find-time query has no duration.
	SlotDuration time.Duration
	// WindowSpan bounds the default search window starting at the
	// reference time.
	WindowSpan time.Duration
}

// DefaultPolicy mirrors the stock fallbacks: hour-long events, half-hour
// slots, a two-week search window.
func DefaultPolicy() Policy {
	return Policy{
		EventDuration: time.Hour,
		SlotDuration:  30 * time.Minute,
		WindowSpan:    14 * 24 * time.Hour,
	}
}

// defaultWindowLabel describes the default search window in messages.
const defaultWindowLabel = "in the next two weeks"

// decode unmarshals LLM JSON output into out, running a repair pass when
// the content is not strictly valid JSON (truncated fences, trailing
// commas, and similar model artifacts).
func decode(content string, out any) error {
	content = stripFences(content)

	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return errors.Wrap(err, "repair extraction output")
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return errors.Wrap(err, "unmarshal extraction output")
	}
	return nil
}

// stripFences removes a surrounding markdown code block, which some models
// emit even in JSON mode.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// parseTimestamp parses a model-supplied timestamp, requiring a full
// ISO-8601 value with explicit offset.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrMissingOffset, "bad timestamp %q", value)
	}
	return t, nil
}
