package mail

import (
	"context"
	"sync"

	"github.com/pinobite/storefront/internal/types"
)

// RecordingMailer keeps sent messages in memory. Failures can be queued
// with FailNext to exercise retry paths.
type RecordingMailer struct {
	mu       sync.Mutex
	sent     []types.Message
	failures []error
	attempts int
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

func (m *RecordingMailer) Send(ctx context.Context, msg types.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *RecordingMailer) Name() string {
	return "recording"
}

// FailNext queues errors returned by the next Send calls, in order.
func (m *RecordingMailer) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

func (m *RecordingMailer) Sent() []types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Message(nil), m.sent...)
}

func (m *RecordingMailer) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Compile-time interface check
var _ types.Mailer = (*RecordingMailer)(nil)
