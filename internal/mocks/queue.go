package mocks

import "sync"

// MockQueue is an in-memory MessageQueue recording published payloads.
type MockQueue struct {
	mu          sync.Mutex
	Published   map[string][][]byte
	PublishFunc func(subject string, data []byte) error
}

func NewMockQueue() *MockQueue {
	return &MockQueue{
		Published: make(map[string][][]byte),
	}
}

func (m *MockQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[subject] = append(m.Published[subject], data)
	return nil
}

func (m *MockQueue) Subscribe(subject string, handler func(data []byte) error) error {
	return nil
}

func (m *MockQueue) Close() error {
	return nil
}
