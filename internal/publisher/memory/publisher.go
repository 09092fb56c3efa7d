// Package memory contains an in-memory publisher for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/linkboard/linkboard/internal/directory"
)

// Publisher records published payloads so tests can assert on the moderation
// events the directory service emits.
type Publisher struct {
	mu       sync.RWMutex
	messages []PublishedMessage
}

// PublishedMessage captures one publish call.
type PublishedMessage struct {
	Topic   string
	Payload any
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the message and returns a pseudo ID.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, PublishedMessage{Topic: topic, Payload: payload})
	return fmt.Sprintf("memory-%d", len(p.messages)), nil
}

// Messages returns the recorded publishes.
func (p *Publisher) Messages() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PublishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Events returns the recorded payloads that are moderation events, in
// publish order.
func (p *Publisher) Events() []directory.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var events []directory.Event
	for _, msg := range p.messages {
		if event, ok := msg.Payload.(directory.Event); ok {
			events = append(events, event)
		}
	}
	return events
}
