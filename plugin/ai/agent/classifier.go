package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/calendai/calendai/plugin/ai"
)

// ClassificationResult is the parsed LLM classification output.
type ClassificationResult struct {
	Intent     Intent  `json:"command"`
	Confidence float64 `json:"confidence"`
}

// Classifier routes utterances to intents using the LLM, with the rule
// classifier as a fallback. Classify never fails: any degradation ends in
// a valid intent, worst case chat.
type Classifier struct {
	llm ai.Completer

	// model overrides the client default; routing works well on a smaller,
	// faster model than generation does.
	model string

	fallback *RuleClassifier
}

// NewClassifier creates an LLM-backed intent classifier. model may be
// empty to use the client default.
func NewClassifier(llm ai.Completer, model string) *Classifier {
	return &Classifier{
		llm:      llm,
		model:    model,
		fallback: NewRuleClassifier(),
	}
}

// Classify determines the intent of the utterance. When the LLM call or
// its output parsing fails, it degrades to keyword rules.
func (c *Classifier) Classify(ctx context.Context, input string) Intent {
	result, err := c.classifyLLM(ctx, input)
	if err != nil {
		slog.Warn("LLM intent classification failed, using keyword fallback",
			"error", err,
			"input", truncateForLog(input, 50))
		return c.fallback.Classify(input)
	}
	return result.Intent
}

func (c *Classifier) classifyLLM(ctx context.Context, input string) (*ClassificationResult, error) {
	content, err := c.llm.CompleteJSON(ctx, ai.StructuredRequest{
		Model:      c.model,
		System:     commandRouterPrompt,
		User:       "User Message: " + input,
		SchemaName: "command_routing",
		Schema:     commandSchema,
		MaxTokens:  50,
	})
	if err != nil {
		return nil, errors.Wrap(err, "classification request")
	}

	var raw struct {
		Command    string  `json:"command"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, errors.Wrap(err, "parse classification output")
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(raw.Command)))
	if !intent.Valid() {
		// The enum schema should prevent this; treat a stray value as chat
		// rather than failing the whole request.
		slog.Warn("unknown command from classifier, defaulting to chat",
			"raw_command", raw.Command)
		intent = IntentChat
	}

	slog.Debug("intent classified",
		"input", truncateForLog(input, 30),
		"intent", intent,
		"confidence", raw.Confidence)

	return &ClassificationResult{Intent: intent, Confidence: raw.Confidence}, nil
}

const commandRouterPrompt = `You are a command router for a calendar assistant. Your job is to determine what the user wants to do based on their message.

The available commands are:
- schedule: To create a new event.
- reschedule: To move an existing event.
- cancel: To delete an event.
- view_events: To answer a question about the schedule.
- find_time: To find an open time slot on the calendar.
- proactive_suggestion: For when the user asks for advice or suggestions about their schedule.
- goal_scheduling: For when the user wants help planning a multi-step goal.
- chat: For general conversation, greetings, or anything that doesn't fit the other commands.

Examples:
- "Hey, can you set up a meeting for tomorrow at 2pm?" -> schedule
- "I need to cancel my dentist appointment." -> cancel
- "Move my 3pm meeting to 4pm." -> reschedule
- "How many meetings do I have tomorrow?" -> view_events
- "Find a 30 minute slot for me next week" -> find_time
- "I have back to back meetings, can you help?" -> proactive_suggestion
- "Help me plan my launch party for next month." -> goal_scheduling
- "Hello there!" -> chat`

// commandSchema constrains classification output to the known commands.
var commandSchema = &ai.Schema{
	Type: "object",
	Properties: map[string]*ai.Schema{
		"command": {
			Type: "string",
			Enum: []string{
				"schedule",
				"reschedule",
				"cancel",
				"view_events",
				"find_time",
				"proactive_suggestion",
				"goal_scheduling",
				"chat",
			},
			Description: "The command the user wants to execute",
		},
		"confidence": {
			Type:        "number",
			Description: "Confidence score between 0 and 1",
		},
	},
	Required:             []string{"command", "confidence"},
	AdditionalProperties: false,
}
