// Package agent is the command core of the calendar assistant. It turns a
// natural-language utterance plus calendar credentials into one executed
// action and a user-facing reply: classify the intent, run the matching
// handler, and never leak a raw error past the dispatcher.
package agent

import (
	"github.com/pkg/errors"

	"github.com/calendai/calendai/plugin/calendar"
)

// Request is one user command entering the dispatcher. Credentials and
// Timezone come from the caller's session; the core never stores them.
type Request struct {
	Message     string
	Credentials calendar.Credentials
	Timezone    string
}

// Result is a handler's outcome. Message is always safe to show the user;
// Success is false for clarification questions and failed actions alike.
type Result struct {
	Success bool
	Message string
}

// Response is the dispatcher's answer to one request.
type Response struct {
	RequestID string
	Intent    Intent
	Success   bool
	Message   string
}

// Caller contract violations. These are programming errors in the caller,
// not user mistakes; they are logged loudly and answered with a canned
// reply instead of reaching a handler.
var (
	// ErrEmptyMessage means the utterance was empty or whitespace.
	ErrEmptyMessage = errors.New("empty command message")

	// ErrInvalidTimezone means the request carried an unknown IANA timezone.
	ErrInvalidTimezone = errors.New("invalid IANA timezone")
)
