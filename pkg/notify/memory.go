package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemorySink is an in-process Sink. It records delivered payloads and keeps
// scheduled requests in a map. It backs the daemon when no push relay is
// configured and doubles as the test sink.
type MemorySink struct {
	mu        sync.Mutex
	delivered []Request
	scheduled map[string]Request

	// Err, when set, makes every operation fail with it.
	Err error
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{scheduled: make(map[string]Request)}
}

func (m *MemorySink) Name() string { return "memory" }

func (m *MemorySink) Send(_ context.Context, p Payload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	id := uuid.New().String()
	m.delivered = append(m.delivered, Request{ID: id, Payload: p})
	return id, nil
}

func (m *MemorySink) Schedule(_ context.Context, p Payload, s Schedule) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	id := uuid.New().String()
	m.scheduled[id] = Request{ID: id, Payload: p, Schedule: s}
	return id, nil
}

func (m *MemorySink) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	delete(m.scheduled, id)
	return nil
}

func (m *MemorySink) CancelAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.scheduled = make(map[string]Request)
	return nil
}

func (m *MemorySink) Scheduled(_ context.Context) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]Request, 0, len(m.scheduled))
	for _, r := range m.scheduled {
		out = append(out, r)
	}
	return out, nil
}

// Delivered returns a copy of the immediately-sent payloads, in send order.
func (m *MemorySink) Delivered() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.delivered))
	copy(out, m.delivered)
	return out
}
