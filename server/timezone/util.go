// Package timezone provides timezone utilities for the CalendAI core.
//
// The core receives an IANA timezone identifier from the caller on every
// request; this package validates it and renders times for user-facing
// confirmation messages.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "America/New_York").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// FormatEventTime renders a timestamp for confirmation messages in the
// user's timezone: "Jun 11, 2024 at 2:00 PM".
func FormatEventTime(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	return t.In(tz).Format("Jan 2, 2006 at 3:04 PM")
}

// FormatSlot renders a free slot as a display range: "Jun 11, 2024 at
// 2:00 PM - 2:30 PM". Slots are truncated to the requested duration, so
// the date is printed once.
func FormatSlot(start, end time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	return fmt.Sprintf("%s - %s",
		start.In(tz).Format("Jan 2, 2006 at 3:04 PM"),
		end.In(tz).Format("3:04 PM"))
}
