package agent

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/calendai/calendai/internal/observability"
	"github.com/calendai/calendai/plugin/ai"
	"github.com/calendai/calendai/plugin/ai/extract"
	"github.com/calendai/calendai/plugin/calendar"
	"github.com/calendai/calendai/server/timezone"
)

// Replies shared across handlers. Action handlers own their more specific
// messages; these cover dispatcher-level failures.
const (
	msgEmptyMessage   = "I didn't catch that. What would you like me to do?"
	msgGenericFailure = "Sorry, I ran into a problem handling that. Please try again."
)

// Config wires an Assistant together. Classifier, Extractor, Calendar, and
// LLM are required; the rest default sensibly.
type Config struct {
	Classifier *Classifier
	Extractor  extract.Service
	Calendar   calendar.Service
	LLM        ai.Completer

	Logger *slog.Logger

	// Now supplies the reference time for extraction and free/busy search.
	// Defaults to time.Now; tests pin it.
	Now func() time.Time

	// EventDuration is assumed for an event whose length is unknown, such
	// as a reschedule target with no end time. Defaults to one hour.
	EventDuration time.Duration

	// DevMode makes caller contract violations log at error level so they
	// surface during development. The user-facing reply is the same.
	DevMode bool
}

// Assistant dispatches user commands to action handlers. It is safe for
// concurrent use; all per-request state lives in the request context.
type Assistant struct {
	classifier    *Classifier
	extractor     extract.Service
	calendar      calendar.Service
	llm           ai.Completer
	logger        *slog.Logger
	now           func() time.Time
	eventDuration time.Duration
	devMode       bool
}

// NewAssistant creates an Assistant from the config.
func NewAssistant(cfg Config) (*Assistant, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if cfg.Calendar == nil {
		return nil, errors.New("calendar service is required")
	}
	if cfg.LLM == nil {
		return nil, errors.New("llm completer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.EventDuration <= 0 {
		cfg.EventDuration = time.Hour
	}

	return &Assistant{
		classifier:    cfg.Classifier,
		extractor:     cfg.Extractor,
		calendar:      cfg.Calendar,
		llm:           cfg.LLM,
		logger:        cfg.Logger,
		now:           cfg.Now,
		eventDuration: cfg.EventDuration,
		devMode:       cfg.DevMode,
	}, nil
}

// HandleCommand classifies the utterance, runs the matching handler, and
// returns a reply that is always safe to show the user. It never panics
// and never surfaces a raw internal error.
func (a *Assistant) HandleCommand(ctx context.Context, req Request) Response {
	reqCtx := observability.NewRequestContext(a.logger)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	resp := Response{RequestID: reqCtx.RequestID, Intent: IntentChat}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		a.contractViolation(reqCtx, ErrEmptyMessage)
		resp.Message = msgEmptyMessage
		return resp
	}
	if !timezone.IsValidTimezone(req.Timezone) {
		a.contractViolation(reqCtx, errors.Wrapf(ErrInvalidTimezone, "timezone %q", req.Timezone))
		resp.Message = msgGenericFailure
		return resp
	}
	req.Message = message

	intent := a.classifier.Classify(ctx, message)
	reqCtx.SetIntent(string(intent))

	result := a.dispatch(ctx, intent, &req)

	resp.Intent = intent
	resp.Success = result.Success
	resp.Message = result.Message

	reqCtx.Info("command handled",
		slog.Bool("success", result.Success),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		slog.Int(observability.LogFieldMessageLen, len(message)))

	return resp
}

// dispatch routes to the handler for the intent. A panicking handler is
// recovered here and answered with the generic apology.
func (a *Assistant) dispatch(ctx context.Context, intent Intent, req *Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if reqCtx, ok := observability.FromContext(ctx); ok {
				reqCtx.Error("handler panicked", errors.Errorf("%v", r),
					slog.String("stack", string(debug.Stack())))
			}
			result = Result{Success: false, Message: msgGenericFailure}
		}
	}()

	switch intent {
	case IntentSchedule:
		return a.handleSchedule(ctx, req)
	case IntentReschedule:
		return a.handleReschedule(ctx, req)
	case IntentCancel:
		return a.handleCancel(ctx, req)
	case IntentViewEvents:
		return a.handleViewEvents(ctx, req)
	case IntentFindTime:
		return a.handleFindTime(ctx, req)
	case IntentProactiveSuggestion:
		return a.handleProactiveSuggestion(ctx, req)
	case IntentGoalScheduling:
		return a.handleGoalScheduling(ctx, req)
	default:
		return a.handleChat(ctx, req)
	}
}

func (a *Assistant) contractViolation(reqCtx *observability.RequestContext, err error) {
	if a.devMode {
		reqCtx.Error("caller contract violation", err)
		return
	}
	reqCtx.Warn("caller contract violation", slog.String("error", err.Error()))
}

// loc returns the request timezone as a location. The dispatcher has
// already validated it.
func (a *Assistant) loc(req *Request) *time.Location {
	return timezone.MustParseTimezone(req.Timezone)
}
