package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calendai/calendai/internal/observability"
	"github.com/calendai/calendai/plugin/ai"
)

// Handlers that answer with generated text over the event list: schedule
// questions, proactive advice, goal planning, and plain chat.

const (
	msgViewEventsFailed = "I had trouble checking your calendar. Please try again later."

	msgSuggestionEmpty  = "I looked at your calendar but couldn't find any specific suggestions right now. Is there anything else I can help with?"
	msgSuggestionFailed = "I had some trouble analyzing your schedule. Please try again later."

	msgGoalEmpty  = "I had some trouble breaking that goal down. Could you try being more specific?"
	msgGoalFailed = "I had an issue creating a plan for that goal. Please try again."

	msgChatFailed = "Sorry, I'm having trouble responding right now. Please try again."
)

const answerQuestionPrompt = `You are a helpful calendar assistant. A user is asking a question about their schedule.
Use the provided event data to answer their question.

Formulate a friendly and direct answer to the user's question based on the event data.
If the event data doesn't contain the answer, say that you don't have that information.`

const proactiveSuggestionPrompt = `You are a helpful calendar assistant. The user is asking for advice about their schedule.
Analyze their upcoming events and provide a proactive, helpful suggestion.
Look for things like back-to-back meetings, lack of breaks, or opportunities to be more productive.`

const goalPlanPrompt = `You are an expert project manager and scheduling assistant. A user has given you a high-level goal.
Your task is to break this goal down into a series of smaller, actionable steps.
Then, propose a simple, easy-to-read schedule for these steps that the user could add to their calendar.
Do not schedule them yet, just propose the plan.

You have access to the user's upcoming events to avoid suggesting times that are already booked.

Create a friendly message that outlines the plan.
Example: "To help you prepare for your presentation, I can schedule 'Draft Slides' for Tuesday at 2pm and 'Practice Presentation' for Thursday at 11am. Would you like me to add these to your calendar?"`

const chatPrompt = `You are a friendly calendar assistant. The user is making conversation rather than giving a calendar command.
Reply briefly and warmly. If it seems useful, mention that you can schedule, move, or cancel events, answer questions about their calendar, and find open time slots.`

// handleViewEvents answers a question about the schedule using the event
// list as context.
func (a *Assistant) handleViewEvents(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	events, err := a.calendar.ListEvents(ctx, req.Credentials)
	if err != nil {
		reqCtx.Error("event listing failed", err)
		return Result{Message: msgViewEventsFailed}
	}

	answer, err := a.llm.Complete(ctx, ai.TextRequest{
		System: answerQuestionPrompt,
		User: fmt.Sprintf("User's Question: %s\n\nEvent Data (JSON):\n%s",
			req.Message, eventsJSON(events, a.loc(req))),
	})
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			reqCtx.Error("answer generation failed", err)
		}
		return Result{Message: msgViewEventsFailed}
	}

	return Result{Success: true, Message: strings.TrimSpace(answer)}
}

// handleProactiveSuggestion offers advice based on the upcoming schedule.
func (a *Assistant) handleProactiveSuggestion(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	events, err := a.calendar.ListEvents(ctx, req.Credentials)
	if err != nil {
		reqCtx.Error("event listing failed", err)
		return Result{Message: msgSuggestionFailed}
	}

	suggestion, err := a.llm.Complete(ctx, ai.TextRequest{
		System: proactiveSuggestionPrompt,
		User: fmt.Sprintf("User's query: %s\n\nUpcoming Events (JSON):\n%s",
			req.Message, eventsJSON(events, a.loc(req))),
	})
	if err != nil {
		reqCtx.Error("suggestion generation failed", err)
		return Result{Message: msgSuggestionFailed}
	}
	if strings.TrimSpace(suggestion) == "" {
		return Result{Success: true, Message: msgSuggestionEmpty}
	}

	return Result{Success: true, Message: strings.TrimSpace(suggestion)}
}

// handleGoalScheduling proposes a plan of events for a high-level goal.
// The plan is a proposal only; nothing is written to the calendar.
func (a *Assistant) handleGoalScheduling(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	events, err := a.calendar.ListEvents(ctx, req.Credentials)
	if err != nil {
		reqCtx.Error("event listing failed", err)
		return Result{Message: msgGoalFailed}
	}

	plan, err := a.llm.Complete(ctx, ai.TextRequest{
		System: goalPlanPrompt,
		User: fmt.Sprintf("The current date and time is %s.\n\nUser's Goal: %s\n\nUpcoming Events (JSON):\n%s",
			a.now().Format(time.RFC3339), req.Message, eventsJSON(events, a.loc(req))),
	})
	if err != nil {
		reqCtx.Error("goal plan generation failed", err)
		return Result{Message: msgGoalFailed}
	}
	if strings.TrimSpace(plan) == "" {
		return Result{Message: msgGoalEmpty}
	}

	return Result{Success: true, Message: strings.TrimSpace(plan)}
}

// handleChat handles general conversation and anything unclassifiable.
func (a *Assistant) handleChat(ctx context.Context, req *Request) Result {
	reqCtx, _ := observability.FromContext(ctx)

	reply, err := a.llm.Complete(ctx, ai.TextRequest{
		System: chatPrompt,
		User:   req.Message,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			reqCtx.Error("chat reply generation failed", err)
		}
		return Result{Message: msgChatFailed}
	}

	return Result{Success: true, Message: strings.TrimSpace(reply)}
}
