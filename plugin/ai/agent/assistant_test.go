package agent

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calendai/calendai/plugin/ai"
	"github.com/calendai/calendai/plugin/ai/extract"
	"github.com/calendai/calendai/plugin/ai/freebusy"
	"github.com/calendai/calendai/plugin/calendar"
)

// testNow is a Monday at noon UTC.
var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	llm       *ai.MockCompleter
	extractor *extract.MockService
	calendar  *calendar.MockService
	assistant *Assistant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	llm := ai.NewMockCompleter()
	extractor := extract.NewMockService()
	cal := calendar.NewMockService()

	assistant, err := NewAssistant(Config{
		Classifier: NewClassifier(llm, ""),
		Extractor:  extractor,
		Calendar:   cal,
		LLM:        llm,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, err)

	return &fixture{llm: llm, extractor: extractor, calendar: cal, assistant: assistant}
}

func (f *fixture) classifyAs(intent Intent) {
	f.llm.JSONReplies["command_routing"] = `{"command":"` + string(intent) + `","confidence":0.9}`
}

func (f *fixture) handle(t *testing.T, message string) Response {
	t.Helper()
	return f.assistant.HandleCommand(context.Background(), Request{
		Message:     message,
		Credentials: calendar.Credentials{AccessToken: "test-token"},
		Timezone:    "America/New_York",
	})
}

func TestHandleCommand_Schedule(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentSchedule)

	start := time.Date(2024, 6, 11, 14, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	f.extractor.EventResult = &extract.EventDetails{
		Title:     "Team sync",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	resp := f.handle(t, "set up a team sync tomorrow at 2pm")

	assert.Equal(t, IntentSchedule, resp.Intent)
	assert.True(t, resp.Success)
	assert.Equal(t, `OK, I've scheduled "Team sync" for you on Jun 11, 2024 at 2:00 PM.`, resp.Message)
	require.Len(t, f.calendar.CreatedDrafts, 1)
	assert.Equal(t, "America/New_York", f.calendar.CreatedDrafts[0].Timezone)
	assert.Equal(t, testNow, f.extractor.LastRef)
}

func TestHandleCommand_ScheduleUnclearAsksForClarification(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentSchedule)
	// Extraction could not determine title or time.
	f.extractor.EventResult = nil

	resp := f.handle(t, "schedule something sometime")

	assert.False(t, resp.Success)
	assert.Equal(t, msgScheduleUnclear, resp.Message)
	assert.Zero(t, f.calendar.MutationCount())
}

func TestHandleCommand_ScheduleTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentSchedule)
	f.extractor.EventResult = &extract.EventDetails{
		Title:     "Team sync",
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(25 * time.Hour),
	}
	f.calendar.CreateErr = assert.AnError

	resp := f.handle(t, "set up a team sync tomorrow")

	assert.False(t, resp.Success)
	assert.Equal(t, msgScheduleFailed, resp.Message)
	assert.NotContains(t, resp.Message, assert.AnError.Error())
}

func TestHandleCommand_Reschedule(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentReschedule)

	oldStart := time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC)
	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Dentist Appointment", Start: oldStart, End: oldStart.Add(30 * time.Minute)},
	}

	newStart := time.Date(2024, 6, 12, 16, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	f.extractor.RescheduleResult = &extract.RescheduleDetails{
		EventName: "dentist",
		NewStart:  newStart,
	}

	resp := f.handle(t, "move my dentist appointment to 4pm Wednesday")

	assert.True(t, resp.Success)
	assert.Equal(t, `OK, I've rescheduled "Dentist Appointment" to Jun 12, 2024 at 4:00 PM.`, resp.Message)
	require.Len(t, f.calendar.RescheduledIDs, 1)

	// No new end extracted: the event keeps its half-hour length.
	moved := f.calendar.Events[0]
	assert.Equal(t, 30*time.Minute, moved.End.Sub(moved.Start))
}

func TestHandleCommand_RescheduleMissingEventMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentReschedule)

	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Team Sync", Start: testNow.Add(time.Hour), End: testNow.Add(2 * time.Hour)},
	}
	f.extractor.RescheduleResult = &extract.RescheduleDetails{
		EventName: "dentist",
		NewStart:  testNow.Add(48 * time.Hour),
	}

	resp := f.handle(t, "move my dentist appointment to Wednesday")

	assert.False(t, resp.Success)
	assert.Equal(t, `I couldn't find an event called "dentist" to reschedule.`, resp.Message)
	assert.Zero(t, f.calendar.MutationCount())
}

func TestHandleCommand_RescheduleUnknownDurationDefaultsToAnHour(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentReschedule)

	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Standup", Start: testNow.Add(time.Hour)}, // no end time
	}
	newStart := testNow.Add(24 * time.Hour)
	f.extractor.RescheduleResult = &extract.RescheduleDetails{EventName: "standup", NewStart: newStart}

	resp := f.handle(t, "push the standup to tomorrow")

	assert.True(t, resp.Success)
	moved := f.calendar.Events[0]
	assert.Equal(t, time.Hour, moved.End.Sub(moved.Start))
}

func TestHandleCommand_Cancel(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentCancel)

	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Dentist Appointment", Start: testNow.Add(time.Hour)},
	}
	f.extractor.EventNameResult = "dentist"

	resp := f.handle(t, "cancel my dentist appointment")

	assert.True(t, resp.Success)
	assert.Equal(t, `OK, I've cancelled "Dentist Appointment".`, resp.Message)
	assert.Equal(t, []string{"ev-1"}, f.calendar.DeletedIDs)
}

func TestHandleCommand_CancelNotFound(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentCancel)
	f.extractor.EventNameResult = "yoga class"

	resp := f.handle(t, "cancel my yoga class")

	assert.False(t, resp.Success)
	assert.Equal(t, `I couldn't find an event called "yoga class" on your calendar.`, resp.Message)
	assert.Zero(t, f.calendar.MutationCount())
}

func TestHandleCommand_CancelUnclear(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentCancel)
	f.extractor.EventNameResult = ""

	resp := f.handle(t, "cancel it")

	assert.False(t, resp.Success)
	assert.Equal(t, msgCancelUnclear, resp.Message)
	assert.Zero(t, f.calendar.MutationCount())
}

func TestHandleCommand_ViewEvents(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentViewEvents)

	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Team Sync", Start: testNow.Add(time.Hour), End: testNow.Add(2 * time.Hour)},
	}
	f.llm.TextReply = "You have one meeting tomorrow: Team Sync at 9am."

	resp := f.handle(t, "How many meetings do I have tomorrow?")

	assert.True(t, resp.Success)
	assert.Equal(t, "You have one meeting tomorrow: Team Sync at 9am.", resp.Message)

	// The question and the event data both reach the model.
	require.Len(t, f.llm.TextRequests, 1)
	assert.Contains(t, f.llm.TextRequests[0].User, "How many meetings")
	assert.Contains(t, f.llm.TextRequests[0].User, "Team Sync")
}

func TestHandleCommand_ViewEventsTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentViewEvents)
	f.calendar.ListErr = assert.AnError

	resp := f.handle(t, "what's on my calendar?")

	assert.False(t, resp.Success)
	assert.Equal(t, msgViewEventsFailed, resp.Message)
}

func TestHandleCommand_FindTime(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentFindTime)

	windowStart := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	f.extractor.TimeRequestResult = &extract.TimeRequest{
		Duration: 30 * time.Minute,
		Window:   freebusy.Window{Start: windowStart, End: windowStart.Add(8 * time.Hour)},
		Label:    "tomorrow",
	}
	f.llm.TextReply = "How about tomorrow at 9:00 AM?"

	resp := f.handle(t, "find a 30 minute slot tomorrow")

	assert.True(t, resp.Success)
	assert.Equal(t, "How about tomorrow at 9:00 AM?", resp.Message)
	require.Len(t, f.calendar.FreeBusyWindows, 1)
	assert.Equal(t, windowStart, f.calendar.FreeBusyWindows[0].Start)
}

func TestHandleCommand_FindTimeNoSlots(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentFindTime)

	windowStart := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	window := freebusy.Window{Start: windowStart, End: windowStart.Add(2 * time.Hour)}
	f.extractor.TimeRequestResult = &extract.TimeRequest{
		Duration: 30 * time.Minute,
		Window:   window,
		Label:    "tomorrow",
	}
	f.calendar.Busy = []freebusy.BusyInterval{{Start: window.Start, End: window.End}}

	resp := f.handle(t, "find a 30 minute slot tomorrow")

	assert.Equal(t, "I couldn't find any 30-minute slots available tomorrow. Would you like to try a different time?", resp.Message)
	// The model is never asked to suggest from an empty slot list.
	assert.Empty(t, f.llm.TextRequests)
}

func TestHandleCommand_FindTimeSuggestionFallback(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentFindTime)

	windowStart := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	f.extractor.TimeRequestResult = &extract.TimeRequest{
		Duration: 30 * time.Minute,
		Window:   freebusy.Window{Start: windowStart, End: windowStart.Add(4 * time.Hour)},
		Label:    "tomorrow",
	}
	f.llm.TextErr = assert.AnError

	resp := f.handle(t, "find a 30 minute slot tomorrow")

	assert.True(t, resp.Success)
	assert.Equal(t, msgFindTimeFallback, resp.Message)
}

func TestHandleCommand_ProactiveSuggestion(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentProactiveSuggestion)
	f.llm.TextReply = "You have three back-to-back meetings; consider a break after the second."

	resp := f.handle(t, "I have back to back meetings, can you help?")

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "back-to-back")
}

func TestHandleCommand_GoalScheduling(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentGoalScheduling)
	f.llm.TextReply = "To prepare the launch, I can schedule 'Draft announcement' on Tuesday."

	resp := f.handle(t, "Help me plan my launch party for next month.")

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "Draft announcement")

	// The plan is a proposal; nothing is written to the calendar.
	assert.Zero(t, f.calendar.MutationCount())

	require.Len(t, f.llm.TextRequests, 1)
	assert.Contains(t, f.llm.TextRequests[0].User, testNow.Format(time.RFC3339))
}

func TestHandleCommand_Chat(t *testing.T) {
	f := newFixture(t)
	f.classifyAs(IntentChat)
	f.llm.TextReply = "Hi! I can help with your calendar."

	resp := f.handle(t, "Hello there!")

	assert.Equal(t, IntentChat, resp.Intent)
	assert.True(t, resp.Success)
	assert.Equal(t, "Hi! I can help with your calendar.", resp.Message)
}

func TestHandleCommand_ClassificationFailureDegradesToRules(t *testing.T) {
	f := newFixture(t)
	// Classification calls fail; keyword rules must still route the command.
	f.llm.JSONErr = assert.AnError

	f.calendar.Events = []calendar.Event{
		{ID: "ev-1", Summary: "Dentist Appointment", Start: testNow.Add(time.Hour)},
	}
	f.extractor.EventNameResult = "dentist"

	resp := f.handle(t, "I need to cancel my dentist appointment.")

	assert.Equal(t, IntentCancel, resp.Intent)
	assert.True(t, resp.Success)
}

func TestHandleCommand_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	resp := f.handle(t, "   ")

	assert.Equal(t, IntentChat, resp.Intent)
	assert.False(t, resp.Success)
	assert.Equal(t, msgEmptyMessage, resp.Message)
	assert.Empty(t, f.llm.StructuredRequests, "no classification for an empty message")
}

func TestHandleCommand_InvalidTimezone(t *testing.T) {
	f := newFixture(t)

	resp := f.assistant.HandleCommand(context.Background(), Request{
		Message:     "hello",
		Credentials: calendar.Credentials{AccessToken: "test-token"},
		Timezone:    "Mars/Olympus_Mons",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, msgGenericFailure, resp.Message)
}

// panickyExtractor simulates a handler bug.
type panickyExtractor struct {
	extract.MockService
}

func (p *panickyExtractor) Event(_ context.Context, _ string, _ time.Time) (*extract.EventDetails, error) {
	panic("boom")
}

func TestHandleCommand_HandlerPanicIsRecovered(t *testing.T) {
	llm := ai.NewMockCompleter()
	llm.JSONReplies["command_routing"] = `{"command":"schedule","confidence":0.9}`

	assistant, err := NewAssistant(Config{
		Classifier: NewClassifier(llm, ""),
		Extractor:  &panickyExtractor{},
		Calendar:   calendar.NewMockService(),
		LLM:        llm,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, err)

	resp := assistant.HandleCommand(context.Background(), Request{
		Message:     "schedule a sync tomorrow",
		Credentials: calendar.Credentials{AccessToken: "test-token"},
		Timezone:    "UTC",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, msgGenericFailure, resp.Message)
	assert.NotEmpty(t, resp.RequestID)
}

func TestFindEventByName(t *testing.T) {
	events := []calendar.Event{
		{ID: "ev-1", Summary: "Weekly Sync", Start: testNow.Add(time.Hour)},
		{ID: "ev-2", Summary: "Design Sync", Start: testNow.Add(2 * time.Hour)},
	}

	// Several matches: the earliest upcoming event wins.
	match, found := findEventByName(events, "sync")
	assert.True(t, found)
	assert.Equal(t, "ev-1", match.ID)

	// Matching is case-insensitive.
	match, found = findEventByName(events, "DESIGN")
	assert.True(t, found)
	assert.Equal(t, "ev-2", match.ID)

	_, found = findEventByName(events, "dentist")
	assert.False(t, found)
}
