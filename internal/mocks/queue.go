package mocks

// MockMessageQueue is a mock implementation of MessageQueue interface
type MockMessageQueue struct {
	PublishedMessages map[string][][]byte
	Subscribers       map[string][]func([]byte) error
	PublishFunc       func(topic string, data []byte) error
	SubscribeFunc     func(topic string, handler func([]byte) error) error
	PingFunc          func() error
	CloseFunc         func() error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		PublishedMessages: make(map[string][][]byte),
		Subscribers:       make(map[string][]func([]byte) error),
	}
}

func (m *MockMessageQueue) Publish(topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(topic, data)
	}
	m.PublishedMessages[topic] = append(m.PublishedMessages[topic], data)
	return nil
}

func (m *MockMessageQueue) Subscribe(topic string, handler func([]byte) error) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(topic, handler)
	}
	m.Subscribers[topic] = append(m.Subscribers[topic], handler)
	return nil
}

func (m *MockMessageQueue) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}

func (m *MockMessageQueue) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// GetPublishedMessages returns all messages published to a topic
func (m *MockMessageQueue) GetPublishedMessages(topic string) [][]byte {
	return m.PublishedMessages[topic]
}

// LastMessage returns the most recent message published to a topic, or nil
func (m *MockMessageQueue) LastMessage(topic string) []byte {
	msgs := m.PublishedMessages[topic]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// ClearMessages clears all published messages
func (m *MockMessageQueue) ClearMessages() {
	m.PublishedMessages = make(map[string][][]byte)
}

// Deliver invokes every handler subscribed to a topic, returning the first
// handler error
func (m *MockMessageQueue) Deliver(topic string, data []byte) error {
	for _, handler := range m.Subscribers[topic] {
		if err := handler(data); err != nil {
			return err
		}
	}
	return nil
}
