// mock_publisher.go - Mock publisher implementation for testing
package testutil

import (
	"sync"
	"time"

	"github.com/photo-cycler/backend/internal/models"
)

// MockPublisher implements storage.Publisher in memory and records every
// successful publish.
type MockPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

// NewMockPublisher creates an empty mock publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// SetError makes subsequent publishes fail with err. Nil restores success.
func (m *MockPublisher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockPublisher) Publish(src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, src)
	return nil
}

func (m *MockPublisher) Current() (models.Publication, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.published) == 0 {
		return models.Publication{}, false
	}
	return models.Publication{
		Source:      m.published[len(m.published)-1],
		PublishedAt: time.Now(),
	}, true
}

// Count returns the number of successful publishes.
func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}
