package profile

import (
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/calendai/calendai/server/timezone"
)

// Default scheduling policy values. The original behavior hardcoded these
// inline per handler; they are named here and overridable via environment.
const (
	// DefaultEventDurationMinutes is assumed when an event description or a
	// reschedule command carries no end time.
	DefaultEventDurationMinutes = 60

	// DefaultSlotDurationMinutes is assumed when a find-time query carries
	// no duration.
	DefaultSlotDurationMinutes = 30

	// DefaultSearchWindowDays bounds the free-slot search when the query
	// carries no window.
	DefaultSearchWindowDays = 14

	// DefaultUpcomingEventsLimit caps the upcoming-events list fetched as
	// lookup and extraction context.
	DefaultUpcomingEventsLimit = 10
)

// Profile is the configuration for the CalendAI core.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo".
	Mode string
	// Version is the current version of the assistant.
	Version string

	// LLM configuration.
	LLMAPIKey  string // CALENDAI_LLM_API_KEY
	LLMBaseURL string // CALENDAI_LLM_BASE_URL (default: https://api.openai.com/v1)
	LLMModel   string // CALENDAI_LLM_MODEL (default: gpt-4o-mini)

	// RouterModel is the lightweight model used for intent classification.
	RouterModel string // CALENDAI_ROUTER_MODEL (defaults to LLMModel)

	// DefaultTimezone is used when a request carries no timezone.
	DefaultTimezone string // CALENDAI_DEFAULT_TIMEZONE (default: UTC)

	// Scheduling policy. Zero values are replaced by the defaults above
	// in Validate.
	EventDurationMinutes int // CALENDAI_EVENT_DURATION_MINUTES
	SlotDurationMinutes  int // CALENDAI_SLOT_DURATION_MINUTES
	SearchWindowDays     int // CALENDAI_SEARCH_WINDOW_DAYS
	UpcomingEventsLimit  int // CALENDAI_UPCOMING_EVENTS_LIMIT
}

// IsDev returns true unless the profile runs in production mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvOrDefault returns the environment variable parsed as int, or the
// default when unset or unparseable.
func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from CALENDAI_* environment variables.
func (p *Profile) FromEnv() {
	p.Mode = getEnvOrDefault("CALENDAI_MODE", "dev")
	p.LLMAPIKey = os.Getenv("CALENDAI_LLM_API_KEY")
	p.LLMBaseURL = getEnvOrDefault("CALENDAI_LLM_BASE_URL", "https://api.openai.com/v1")
	p.LLMModel = getEnvOrDefault("CALENDAI_LLM_MODEL", "gpt-4o-mini")
	p.RouterModel = getEnvOrDefault("CALENDAI_ROUTER_MODEL", p.LLMModel)
	p.DefaultTimezone = getEnvOrDefault("CALENDAI_DEFAULT_TIMEZONE", "UTC")

	p.EventDurationMinutes = getIntEnvOrDefault("CALENDAI_EVENT_DURATION_MINUTES", DefaultEventDurationMinutes)
	p.SlotDurationMinutes = getIntEnvOrDefault("CALENDAI_SLOT_DURATION_MINUTES", DefaultSlotDurationMinutes)
	p.SearchWindowDays = getIntEnvOrDefault("CALENDAI_SEARCH_WINDOW_DAYS", DefaultSearchWindowDays)
	p.UpcomingEventsLimit = getIntEnvOrDefault("CALENDAI_UPCOMING_EVENTS_LIMIT", DefaultUpcomingEventsLimit)
}

// Validate normalizes the profile and rejects unusable configurations.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.LLMAPIKey == "" {
		return errors.New("LLM API key is required")
	}
	if p.LLMModel == "" {
		return errors.New("LLM model is required")
	}
	if p.RouterModel == "" {
		p.RouterModel = p.LLMModel
	}

	if !timezone.IsValidTimezone(p.DefaultTimezone) {
		return errors.Errorf("invalid default timezone %q", p.DefaultTimezone)
	}

	if p.EventDurationMinutes <= 0 {
		p.EventDurationMinutes = DefaultEventDurationMinutes
	}
	if p.SlotDurationMinutes <= 0 {
		p.SlotDurationMinutes = DefaultSlotDurationMinutes
	}
	if p.SearchWindowDays <= 0 {
		p.SearchWindowDays = DefaultSearchWindowDays
	}
	if p.UpcomingEventsLimit <= 0 {
		p.UpcomingEventsLimit = DefaultUpcomingEventsLimit
	}

	return nil
}
