package mocks

// MockMessageQueue records published events by subject. Tests inspect
// PublishedMessages directly.
type MockMessageQueue struct {
	PublishedMessages map[string][][]byte
	PublishFunc       func(subject string, data []byte) error
	SubscribeFunc     func(subject string, handler func([]byte) error) error
	CloseFunc         func() error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		PublishedMessages: make(map[string][][]byte),
	}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	m.PublishedMessages[subject] = append(m.PublishedMessages[subject], data)
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func([]byte) error) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(subject, handler)
	}
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
