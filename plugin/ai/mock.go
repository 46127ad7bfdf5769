package ai

import (
	"context"

	"github.com/pkg/errors"
)

// MockCompleter is a canned-response Completer for tests. Structured
// responses are keyed by schema name; free-text calls share one reply.
type MockCompleter struct {
	// TextReply is returned by Complete.
	TextReply string
	// TextErr fails Complete when set.
	TextErr error

	// JSONReplies maps schema name to the raw JSON returned by CompleteJSON.
	JSONReplies map[string]string
	// JSONErr fails CompleteJSON when set.
	JSONErr error

	// Recorded calls.
	TextRequests       []TextRequest
	StructuredRequests []StructuredRequest
}

// NewMockCompleter creates an empty mock.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{JSONReplies: map[string]string{}}
}

func (m *MockCompleter) Complete(_ context.Context, req TextRequest) (string, error) {
	m.TextRequests = append(m.TextRequests, req)
	if m.TextErr != nil {
		return "", m.TextErr
	}
	return m.TextReply, nil
}

func (m *MockCompleter) CompleteJSON(_ context.Context, req StructuredRequest) (string, error) {
	m.StructuredRequests = append(m.StructuredRequests, req)
	if m.JSONErr != nil {
		return "", m.JSONErr
	}
	reply, ok := m.JSONReplies[req.SchemaName]
	if !ok {
		return "", errors.Errorf("no canned reply for schema %q", req.SchemaName)
	}
	return reply, nil
}

var _ Completer = (*MockCompleter)(nil)
