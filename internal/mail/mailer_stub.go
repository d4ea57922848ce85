package mail

import (
	"context"
	"sync"
)

// MailerStub records sent messages instead of delivering them.
type MailerStub struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func NewMailerStub() *MailerStub {
	return &MailerStub{}
}

func (m *MailerStub) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// FailWith makes subsequent Send calls return err.
func (m *MailerStub) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MailerStub) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
