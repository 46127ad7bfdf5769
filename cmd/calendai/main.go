// Command calendai runs the calendar assistant as an interactive console.
// It reads commands from stdin and executes them against the configured
// Google Calendar account, one request per line.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/calendai/calendai/internal/profile"
	"github.com/calendai/calendai/plugin/ai"
	"github.com/calendai/calendai/plugin/ai/agent"
	"github.com/calendai/calendai/plugin/ai/extract"
	"github.com/calendai/calendai/plugin/calendar"
	"github.com/calendai/calendai/server/timezone"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Optional .env for local development.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &profile.Profile{}
	cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level := slog.LevelInfo
	if cfg.IsDev() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	accessToken := os.Getenv("CALENDAI_GOOGLE_ACCESS_TOKEN")
	if accessToken == "" {
		log.Fatal("CALENDAI_GOOGLE_ACCESS_TOKEN is required")
	}

	userTimezone := os.Getenv("CALENDAI_USER_TIMEZONE")
	if userTimezone == "" {
		userTimezone = cfg.DefaultTimezone
	}
	if !timezone.IsValidTimezone(userTimezone) {
		log.Fatalf("invalid timezone %q", userTimezone)
	}

	llm := ai.NewClient(ai.NewConfigFromProfile(cfg))

	extractor := extract.NewLLMService(llm, extract.Policy{
		EventDuration: time.Duration(cfg.EventDurationMinutes) * time.Minute,
		SlotDuration:  time.Duration(cfg.SlotDurationMinutes) * time.Minute,
		WindowSpan:    time.Duration(cfg.SearchWindowDays) * 24 * time.Hour,
	})

	assistant, err := agent.NewAssistant(agent.Config{
		Classifier:    agent.NewClassifier(llm, cfg.RouterModel),
		Extractor:     extractor,
		Calendar:      calendar.NewGoogleService(cfg.UpcomingEventsLimit),
		LLM:           llm,
		Logger:        logger,
		EventDuration: time.Duration(cfg.EventDurationMinutes) * time.Minute,
		DevMode:       cfg.IsDev(),
	})
	if err != nil {
		log.Fatalf("failed to create assistant: %v", err)
	}

	creds := calendar.Credentials{AccessToken: accessToken}

	fmt.Println("CalendAI console. Type a command, or \"quit\" to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "quit" || line == "exit" {
			break
		}

		resp := assistant.HandleCommand(context.Background(), agent.Request{
			Message:     line,
			Credentials: creds,
			Timezone:    userTimezone,
		})
		fmt.Printf("[%s] %s\n", resp.Intent, resp.Message)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin: %v", err)
	}
}
