package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calendai/calendai/plugin/ai"
	"github.com/calendai/calendai/plugin/ai/freebusy"
)

// LLMService implements Service over the shared LLM client. One generic
// prompt/schema/decode path serves all three contracts, so adding a new
// extraction shape means adding a schema, not re-plumbing.
type LLMService struct {
	llm    ai.Completer
	policy Policy
}

// NewLLMService creates an extraction service.
func NewLLMService(llm ai.Completer, policy Policy) *LLMService {
	if policy.EventDuration <= 0 {
		policy.EventDuration = DefaultPolicy().EventDuration
	}
	if policy.SlotDuration <= 0 {
		policy.SlotDuration = DefaultPolicy().SlotDuration
	}
	if policy.WindowSpan <= 0 {
		policy.WindowSpan = DefaultPolicy().WindowSpan
	}
	return &LLMService{llm: llm, policy: policy}
}

// eventWire is the raw schema shape for event extraction. Empty strings
// mean the model could not determine the field.
type eventWire struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Event extracts event details from a scheduling description.
func (s *LLMService) Event(ctx context.Context, description string, ref time.Time) (*EventDetails, error) {
	var wire eventWire
	if err := s.complete(ctx, "event_details", eventSchema, eventSystemPrompt, userPrompt(description, ref), &wire); err != nil {
		return nil, err
	}

	// A schema-valid but semantically empty response is treated as absent.
	if wire.Title == "" || wire.StartTime == "" {
		slog.Debug("event extraction under-specified",
			"has_title", wire.Title != "",
			"has_start", wire.StartTime != "")
		return nil, nil
	}

	start, err := parseTimestamp(wire.StartTime)
	if err != nil {
		return nil, err
	}

	end := start.Add(s.policy.EventDuration)
	if wire.EndTime != "" {
		end, err = parseTimestamp(wire.EndTime)
		if err != nil {
			return nil, err
		}
	}
	if !end.After(start) {
		return nil, ErrInvalidEventTimes
	}

	return &EventDetails{Title: wire.Title, StartTime: start, EndTime: end}, nil
}

// timeRequestWire is the raw schema shape for find-time extraction.
type timeRequestWire struct {
	Duration  int    `json:"duration"`
	TimeRange string `json:"timeRange"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// TimeRequest extracts the slot duration and search window from a query.
func (s *LLMService) TimeRequest(ctx context.Context, query string, ref time.Time) (*TimeRequest, error) {
	var wire timeRequestWire
	if err := s.complete(ctx, "time_request", timeRequestSchema, timeRequestSystemPrompt, userPrompt(query, ref), &wire); err != nil {
		return nil, err
	}

	req := &TimeRequest{
		Duration: time.Duration(wire.Duration) * time.Minute,
		Window:   freebusy.Window{Start: ref, End: ref.Add(s.policy.WindowSpan)},
		Label:    wire.TimeRange,
	}
	if wire.Duration <= 0 {
		req.Duration = s.policy.SlotDuration
	}
	if req.Label == "" {
		req.Label = defaultWindowLabel
	}

	if wire.Start != "" && wire.End != "" {
		start, err := parseTimestamp(wire.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseTimestamp(wire.End)
		if err != nil {
			return nil, err
		}
		if end.After(start) {
			req.Window = freebusy.Window{Start: start, End: end}
		} else {
			// Inverted window is treated as not derivable; keep default.
			slog.Warn("extracted search window is inverted, using default",
				"start", wire.Start, "end", wire.End)
		}
	}

	return req, nil
}

// rescheduleWire is the raw schema shape for reschedule extraction.
type rescheduleWire struct {
	EventName    string `json:"eventName"`
	NewStartTime string `json:"newStartTime"`
	NewEndTime   string `json:"newEndTime"`
}

// Reschedule extracts the event name and new times from a command.
func (s *LLMService) Reschedule(ctx context.Context, command string, ref time.Time) (*RescheduleDetails, error) {
	var wire rescheduleWire
	if err := s.complete(ctx, "reschedule_details", rescheduleSchema, rescheduleSystemPrompt, userPrompt(command, ref), &wire); err != nil {
		return nil, err
	}

	if wire.EventName == "" || wire.NewStartTime == "" {
		return nil, nil
	}

	start, err := parseTimestamp(wire.NewStartTime)
	if err != nil {
		return nil, err
	}

	details := &RescheduleDetails{EventName: wire.EventName, NewStart: start}
	if wire.NewEndTime != "" {
		end, err := parseTimestamp(wire.NewEndTime)
		if err != nil {
			return nil, err
		}
		if !end.After(start) {
			return nil, ErrInvalidEventTimes
		}
		details.NewEnd = end
	}

	return details, nil
}

// eventNameWire is the raw schema shape for name-only extraction.
type eventNameWire struct {
	EventName string `json:"eventName"`
}

// EventName extracts the name of the event a command refers to. No
// reference time is involved; the contract recovers a name, not a time.
func (s *LLMService) EventName(ctx context.Context, command string) (string, error) {
	var wire eventNameWire
	if err := s.complete(ctx, "event_name", eventNameSchema, eventNameSystemPrompt, "Command: "+command, &wire); err != nil {
		return "", err
	}
	return wire.EventName, nil
}

// complete runs one structured completion and decodes the result.
func (s *LLMService) complete(ctx context.Context, name string, schema *ai.Schema, system, user string, out any) error {
	content, err := s.llm.CompleteJSON(ctx, ai.StructuredRequest{
		System:     system,
		User:       user,
		SchemaName: name,
		Schema:     schema,
	})
	if err != nil {
		return err
	}
	return decode(content, out)
}

// userPrompt renders the utterance together with the reference time the
// model must resolve relative expressions against.
func userPrompt(text string, ref time.Time) string {
	return fmt.Sprintf("The current date and time is %s.\n\nInput: %s", ref.Format(time.RFC3339), text)
}

const eventSystemPrompt = `You are an expert at extracting event details from a user's query.
Extract the event title and times from the description.

Infer the date and time relative to the current date and time given with the input.
The output times must be in full ISO 8601 format, including the timezone offset.
If no end time is specified, return an empty string for endTime.
If the title or start time cannot be determined, return empty strings for them.`

const timeRequestSystemPrompt = `You are an expert at extracting time-related details from a user's query.
The user wants to find an open time slot. Determine the required duration and the time window to search in.

- duration: the length of the meeting in minutes; 0 if not specified.
- timeRange: a simple description of the search window (e.g., "tomorrow", "next week"); empty if not specified.
- start / end: the search window bounds in full ISO 8601 format with timezone offset; empty strings if not derivable.

Infer dates relative to the current date and time given with the input.`

const rescheduleSystemPrompt = `You are an expert at extracting rescheduling details from a user's query.
Extract the original event name and the new start and end times from the command.

Infer the new date and time relative to the current date and time given with the input.
The output times must be in full ISO 8601 format, including the timezone offset.
If no end time is specified, return an empty string for newEndTime.
If the event name or new start time cannot be determined, return empty strings for them.`

const eventNameSystemPrompt = `The user's command refers to an existing calendar event. Identify the name of the event from the command. Be specific.
If the event name cannot be determined, return an empty string.`

var eventNameSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"eventName": {
			Type:        "string",
			Description: "Name of the event the user refers to; empty if unknown",
		},
	},
	Required:             []string{"eventName"},
	AdditionalProperties: false,
}

var eventSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"title": {
			Type:        "string",
			Description: "The title or summary of the event; empty if unknown",
		},
		"startTime": {
			Type:        "string",
			Description: "Start time in ISO 8601 with offset; empty if unknown",
		},
		"endTime": {
			Type:        "string",
			Description: "End time in ISO 8601 with offset; empty if not specified",
		},
	},
	Required:             []string{"title", "startTime", "endTime"},
	AdditionalProperties: false,
}

var timeRequestSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"duration": {
			Type:        "integer",
			Description: "Requested duration in minutes; 0 if not specified",
		},
		"timeRange": {
			Type:        "string",
			Description: "Short description of the search window; empty if not specified",
		},
		"start": {
			Type:        "string",
			Description: "Window start in ISO 8601 with offset; empty if not derivable",
		},
		"end": {
			Type:        "string",
			Description: "Window end in ISO 8601 with offset; empty if not derivable",
		},
	},
	Required:             []string{"duration", "timeRange", "start", "end"},
	AdditionalProperties: false,
}

var rescheduleSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"eventName": {
			Type:        "string",
			Description: "Name of the event to move; empty if unknown",
		},
		"newStartTime": {
			Type:        "string",
			Description: "New start time in ISO 8601 with offset; empty if unknown",
		},
		"newEndTime": {
			Type:        "string",
			Description: "New end time in ISO 8601 with offset; empty if not specified",
		},
	},
	Required:             []string{"eventName", "newStartTime", "newEndTime"},
	AdditionalProperties: false,
}

var _ Service = (*LLMService)(nil)
