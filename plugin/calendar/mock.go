package calendar

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/calendai/calendai/plugin/ai/freebusy"
)

// MockService is an in-memory Service for tests. Mutation calls are
// recorded so tests can assert that a handler touched (or did not touch)
// the calendar.
type MockService struct {
	Events []Event
	Busy   []freebusy.BusyInterval

	// Error injection, one per operation.
	ListErr       error
	CreateErr     error
	DeleteErr     error
	RescheduleErr error
	FreeBusyErr   error

	// Recorded calls.
	CreatedDrafts   []EventDraft
	DeletedIDs      []string
	RescheduledIDs  []string
	FreeBusyWindows []freebusy.Window
}

// NewMockService creates an empty mock calendar.
func NewMockService() *MockService {
	return &MockService{}
}

// MutationCount returns how many calendar mutations were performed.
func (m *MockService) MutationCount() int {
	return len(m.CreatedDrafts) + len(m.DeletedIDs) + len(m.RescheduledIDs)
}

func (m *MockService) ListEvents(_ context.Context, _ Credentials) ([]Event, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Events, nil
}

func (m *MockService) CreateEvent(_ context.Context, _ Credentials, draft EventDraft) (*Event, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreatedDrafts = append(m.CreatedDrafts, draft)
	event := Event{
		ID:      "mock-created",
		Summary: draft.Summary,
		Start:   draft.Start,
		End:     draft.End,
	}
	m.Events = append(m.Events, event)
	return &event, nil
}

func (m *MockService) DeleteEvent(_ context.Context, _ Credentials, eventID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for i, e := range m.Events {
		if e.ID == eventID {
			m.Events = append(m.Events[:i], m.Events[i+1:]...)
			m.DeletedIDs = append(m.DeletedIDs, eventID)
			return nil
		}
	}
	return errors.Errorf("event %s not found", eventID)
}

func (m *MockService) RescheduleEvent(_ context.Context, _ Credentials, eventID string, newStart, newEnd time.Time) (*Event, error) {
	if m.RescheduleErr != nil {
		return nil, m.RescheduleErr
	}
	for i := range m.Events {
		if m.Events[i].ID == eventID {
			m.Events[i].Start = newStart
			m.Events[i].End = newEnd
			m.RescheduledIDs = append(m.RescheduledIDs, eventID)
			return &m.Events[i], nil
		}
	}
	return nil, errors.Errorf("event %s not found", eventID)
}

func (m *MockService) QueryFreeBusy(_ context.Context, _ Credentials, window freebusy.Window, _ string) ([]freebusy.BusyInterval, error) {
	if m.FreeBusyErr != nil {
		return nil, m.FreeBusyErr
	}
	m.FreeBusyWindows = append(m.FreeBusyWindows, window)
	return m.Busy, nil
}

var _ Service = (*MockService)(nil)
