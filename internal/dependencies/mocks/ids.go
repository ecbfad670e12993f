package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/textworld/internal/dependencies/ids"
)

// MockIDs is a mock implementation of ids.Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Queued is returned in order before falling back to a counter
	Queued []string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs with an empty queue
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// Queue appends IDs to be returned by NewID
func (m *MockIDs) Queue(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queued = append(m.Queued, values...)
}

// NewID returns the next queued ID, or a sequential one when the queue is empty
func (m *MockIDs) NewID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queued) > 0 {
		id := m.Queued[0]
		m.Queued = m.Queued[1:]
		return id
	}
	m.next++
	return fmt.Sprintf("id-%d", m.next)
}
