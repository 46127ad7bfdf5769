package extract

import (
	"context"
	"time"
)

// MockService is a canned-result Service for handler tests. A nil result
// with a nil error models the "could not understand" outcome.
type MockService struct {
	EventResult *EventDetails
	EventErr    error

	TimeRequestResult *TimeRequest
	TimeRequestErr    error

	RescheduleResult *RescheduleDetails
	RescheduleErr    error

	EventNameResult string
	EventNameErr    error

	// LastRef records the reference time of the most recent call, so tests
	// can assert it is supplied fresh.
	LastRef time.Time
}

// NewMockService creates an empty mock extraction service.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Event(_ context.Context, _ string, ref time.Time) (*EventDetails, error) {
	m.LastRef = ref
	return m.EventResult, m.EventErr
}

func (m *MockService) TimeRequest(_ context.Context, _ string, ref time.Time) (*TimeRequest, error) {
	m.LastRef = ref
	return m.TimeRequestResult, m.TimeRequestErr
}

func (m *MockService) Reschedule(_ context.Context, _ string, ref time.Time) (*RescheduleDetails, error) {
	m.LastRef = ref
	return m.RescheduleResult, m.RescheduleErr
}

func (m *MockService) EventName(_ context.Context, _ string) (string, error) {
	return m.EventNameResult, m.EventNameErr
}

var _ Service = (*MockService)(nil)
