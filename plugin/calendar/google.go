package calendar

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calendai/calendai/plugin/ai/freebusy"
)

const primaryCalendarID = "primary"

// requestTimeout bounds a single transport call so a slow calendar API
// cannot hang the request pipeline indefinitely.
const requestTimeout = 30 * time.Second

// GoogleService implements Service against the Google Calendar v3 API.
// A fresh API client is built per call from the request's credentials, so
// no token state lives on the struct.
type GoogleService struct {
	maxResults int64
}

// NewGoogleService creates a Google-backed calendar service. maxResults
// caps the upcoming-events list.
func NewGoogleService(maxResults int) *GoogleService {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &GoogleService{maxResults: int64(maxResults)}
}

func (s *GoogleService) client(ctx context.Context, creds Credentials) (*calendarapi.Service, error) {
	if creds.AccessToken == "" {
		return nil, errors.New("missing access token")
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken})
	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, errors.Wrap(err, "create calendar client")
	}
	return svc, nil
}

// ListEvents fetches the next upcoming events on the primary calendar,
// ordered by start time.
func (s *GoogleService) ListEvents(ctx context.Context, creds Credentials) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := s.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Events.List(primaryCalendarID).
		TimeMin(time.Now().UTC().Format(time.RFC3339)).
		MaxResults(s.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	return eventsFromWire(resp.Items), nil
}

// CreateEvent inserts a new event on the primary calendar.
func (s *GoogleService) CreateEvent(ctx context.Context, creds Credentials, draft EventDraft) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := s.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	created, err := svc.Events.Insert(primaryCalendarID, &calendarapi.Event{
		Summary: draft.Summary,
		Start: &calendarapi.EventDateTime{
			DateTime: draft.Start.Format(time.RFC3339),
			TimeZone: draft.Timezone,
		},
		End: &calendarapi.EventDateTime{
			DateTime: draft.End.Format(time.RFC3339),
			TimeZone: draft.Timezone,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "insert event")
	}

	event, ok := eventFromWire(created)
	if !ok {
		return nil, errors.New("created event is missing required fields")
	}
	return &event, nil
}

// DeleteEvent removes an event from the primary calendar.
func (s *GoogleService) DeleteEvent(ctx context.Context, creds Credentials, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := s.client(ctx, creds)
	if err != nil {
		return err
	}

	if err := svc.Events.Delete(primaryCalendarID, eventID).Context(ctx).Do(); err != nil {
		return errors.Wrapf(err, "delete event %s", eventID)
	}
	return nil
}

// RescheduleEvent patches an event's start and end times.
func (s *GoogleService) RescheduleEvent(ctx context.Context, creds Credentials, eventID string, newStart, newEnd time.Time) (*Event, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := s.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	patched, err := svc.Events.Patch(primaryCalendarID, eventID, &calendarapi.Event{
		Start: &calendarapi.EventDateTime{DateTime: newStart.Format(time.RFC3339)},
		End:   &calendarapi.EventDateTime{DateTime: newEnd.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "patch event %s", eventID)
	}

	event, ok := eventFromWire(patched)
	if !ok {
		return nil, errors.New("patched event is missing required fields")
	}
	return &event, nil
}

// QueryFreeBusy returns the busy intervals on the primary calendar inside
// the window. One query covers the whole window.
func (s *GoogleService) QueryFreeBusy(ctx context.Context, creds Credentials, window freebusy.Window, timezone string) ([]freebusy.BusyInterval, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	svc, err := s.client(ctx, creds)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&calendarapi.FreeBusyRequest{
		TimeMin:  window.Start.Format(time.RFC3339),
		TimeMax:  window.End.Format(time.RFC3339),
		TimeZone: timezone,
		Items:    []*calendarapi.FreeBusyRequestItem{{Id: primaryCalendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "freebusy query")
	}

	cal, ok := resp.Calendars[primaryCalendarID]
	if !ok {
		return nil, nil
	}

	busy := make([]freebusy.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		busy = append(busy, freebusy.BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

// eventsFromWire converts wire events, dropping unusable entries instead of
// failing the whole list.
func eventsFromWire(items []*calendarapi.Event) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if event, ok := eventFromWire(item); ok {
			events = append(events, event)
		}
	}
	return events
}

// eventFromWire converts one wire event. An event without an ID, summary,
// or parseable start datetime is unusable. A missing end time leaves the
// duration unknown rather than discarding the event.
func eventFromWire(item *calendarapi.Event) (Event, bool) {
	if item == nil || item.Id == "" || item.Summary == "" {
		return Event{}, false
	}
	if item.Start == nil || item.Start.DateTime == "" {
		return Event{}, false
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return Event{}, false
	}

	event := Event{ID: item.Id, Summary: item.Summary, Start: start}
	if item.End != nil && item.End.DateTime != "" {
		if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			event.End = end
		}
	}
	return event, true
}

var _ Service = (*GoogleService)(nil)
