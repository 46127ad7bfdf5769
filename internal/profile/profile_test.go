package profile

import (
	"os"
	"testing"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CALENDAI_MODE",
		"CALENDAI_LLM_API_KEY",
		"CALENDAI_LLM_BASE_URL",
		"CALENDAI_LLM_MODEL",
		"CALENDAI_ROUTER_MODEL",
		"CALENDAI_DEFAULT_TIMEZONE",
		"CALENDAI_EVENT_DURATION_MINUTES",
		"CALENDAI_SLOT_DURATION_MINUTES",
		"CALENDAI_SEARCH_WINDOW_DAYS",
		"CALENDAI_UPCOMING_EVENTS_LIMIT",
	} {
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	if p.Mode != "dev" {
		t.Errorf("Mode default: expected dev, got %q", p.Mode)
	}
	if p.LLMBaseURL != "https://api.openai.com/v1" {
		t.Errorf("LLMBaseURL default: got %q", p.LLMBaseURL)
	}
	if p.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel default: got %q", p.LLMModel)
	}
	if p.RouterModel != p.LLMModel {
		t.Errorf("RouterModel should default to LLMModel, got %q", p.RouterModel)
	}
	if p.EventDurationMinutes != 60 {
		t.Errorf("EventDurationMinutes default: got %d", p.EventDurationMinutes)
	}
	if p.SlotDurationMinutes != 30 {
		t.Errorf("SlotDurationMinutes default: got %d", p.SlotDurationMinutes)
	}
	if p.SearchWindowDays != 14 {
		t.Errorf("SearchWindowDays default: got %d", p.SearchWindowDays)
	}
	if p.UpcomingEventsLimit != 10 {
		t.Errorf("UpcomingEventsLimit default: got %d", p.UpcomingEventsLimit)
	}
}

func TestProfileFromEnv(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("CALENDAI_LLM_API_KEY", "sk-test")
	t.Setenv("CALENDAI_LLM_MODEL", "gpt-4o")
	t.Setenv("CALENDAI_ROUTER_MODEL", "gpt-4o-mini")
	t.Setenv("CALENDAI_SLOT_DURATION_MINUTES", "45")
	t.Setenv("CALENDAI_SEARCH_WINDOW_DAYS", "not-a-number")

	p := &Profile{}
	p.FromEnv()

	if p.LLMAPIKey != "sk-test" {
		t.Errorf("LLMAPIKey: got %q", p.LLMAPIKey)
	}
	if p.LLMModel != "gpt-4o" {
		t.Errorf("LLMModel: got %q", p.LLMModel)
	}
	if p.RouterModel != "gpt-4o-mini" {
		t.Errorf("RouterModel: got %q", p.RouterModel)
	}
	if p.SlotDurationMinutes != 45 {
		t.Errorf("SlotDurationMinutes: got %d", p.SlotDurationMinutes)
	}
	if p.SearchWindowDays != 14 {
		t.Errorf("SearchWindowDays should fall back to default on bad input, got %d", p.SearchWindowDays)
	}
}

func TestProfileValidate(t *testing.T) {
	clearEnvVars(t)

	t.Run("missing API key", func(t *testing.T) {
		p := &Profile{Mode: "dev", LLMModel: "gpt-4o-mini", DefaultTimezone: "UTC"}
		if err := p.Validate(); err == nil {
			t.Error("expected error for missing API key")
		}
	})

	t.Run("invalid timezone", func(t *testing.T) {
		p := &Profile{Mode: "dev", LLMAPIKey: "sk-test", LLMModel: "gpt-4o-mini", DefaultTimezone: "Not/AZone"}
		if err := p.Validate(); err == nil {
			t.Error("expected error for invalid timezone")
		}
	})

	t.Run("normalizes mode and policy values", func(t *testing.T) {
		p := &Profile{
			Mode:            "staging",
			LLMAPIKey:       "sk-test",
			LLMModel:        "gpt-4o-mini",
			DefaultTimezone: "UTC",
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if p.Mode != "demo" {
			t.Errorf("unknown mode should normalize to demo, got %q", p.Mode)
		}
		if p.EventDurationMinutes != DefaultEventDurationMinutes {
			t.Errorf("EventDurationMinutes not defaulted: %d", p.EventDurationMinutes)
		}
		if p.RouterModel != p.LLMModel {
			t.Errorf("RouterModel not defaulted: %q", p.RouterModel)
		}
	})
}
