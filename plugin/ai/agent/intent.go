package agent

import (
	"strings"
)

// Intent represents the command a user wants the assistant to execute.
type Intent string

const (
	// IntentSchedule creates a new event at a specific time.
	IntentSchedule Intent = "schedule"

	// IntentReschedule moves an existing event.
	IntentReschedule Intent = "reschedule"

	// IntentCancel deletes an event.
	IntentCancel Intent = "cancel"

	// IntentViewEvents answers a question about the schedule.
	IntentViewEvents Intent = "view_events"

	// IntentFindTime finds an open time slot on the calendar.
	IntentFindTime Intent = "find_time"

	// IntentProactiveSuggestion offers advice about the schedule.
	IntentProactiveSuggestion Intent = "proactive_suggestion"

	// IntentGoalScheduling breaks a high-level goal into a plan of events.
	IntentGoalScheduling Intent = "goal_scheduling"

	// IntentChat is general conversation; also the catch-all when nothing
	// else fits.
	IntentChat Intent = "chat"
)

// AllIntents lists every recognized intent.
var AllIntents = []Intent{
	IntentSchedule,
	IntentReschedule,
	IntentCancel,
	IntentViewEvents,
	IntentFindTime,
	IntentProactiveSuggestion,
	IntentGoalScheduling,
	IntentChat,
}

// Valid reports whether i is one of the recognized intents.
func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// RuleClassifier classifies utterances by keyword matching. It is the
// fallback path when LLM classification is unavailable, so it favors
// precision on the mutating intents and lets everything ambiguous fall
// through to chat or view_events.
type RuleClassifier struct {
	rescheduleKeywords []string
	cancelKeywords     []string
	findTimeKeywords   []string
	goalKeywords       []string
	adviceKeywords     []string
	queryKeywords      []string
	scheduleKeywords   []string
}

// NewRuleClassifier creates a RuleClassifier with the default keyword sets.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		rescheduleKeywords: []string{
			"reschedule", "move my", "move the", "push back", "postpone", "shift",
		},
		cancelKeywords: []string{
			"cancel", "delete", "remove", "call off",
		},
		findTimeKeywords: []string{
			"find a slot", "find time", "find me time", "free slot", "open slot",
			"open time", "availability", "when am i free", "when do i have time",
			"minute slot",
		},
		goalKeywords: []string{
			"help me plan", "plan my", "plan for", "break down", "prepare for",
			"goal",
		},
		adviceKeywords: []string{
			"advice", "suggest", "suggestion", "back to back", "back-to-back",
			"overwhelmed", "too many meetings",
		},
		queryKeywords: []string{
			"how many", "what's on", "what is on", "what do i have",
			"do i have", "when is", "when's", "agenda", "my schedule",
		},
		scheduleKeywords: []string{
			"schedule", "set up", "book", "create", "add", "put",
		},
	}
}

// Classify determines the intent of the utterance. Always returns one of
// the recognized intents; chat is the default.
func (rc *RuleClassifier) Classify(input string) Intent {
	lower := strings.ToLower(input)

	// Mutating intents first; their keywords are the most specific.
	switch {
	case rc.matches(lower, rc.rescheduleKeywords):
		return IntentReschedule
	case rc.matches(lower, rc.cancelKeywords):
		return IntentCancel
	case rc.matches(lower, rc.findTimeKeywords):
		return IntentFindTime
	case rc.matches(lower, rc.goalKeywords):
		return IntentGoalScheduling
	case rc.matches(lower, rc.adviceKeywords):
		return IntentProactiveSuggestion
	case rc.matches(lower, rc.queryKeywords):
		return IntentViewEvents
	case rc.matches(lower, rc.scheduleKeywords):
		return IntentSchedule
	}

	// Bare questions about the calendar read as queries.
	if strings.HasSuffix(strings.TrimSpace(input), "?") && strings.Contains(lower, "meeting") {
		return IntentViewEvents
	}

	return IntentChat
}

func (rc *RuleClassifier) matches(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
