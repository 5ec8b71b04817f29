package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskman/internal/mailer"
)

// RecordingSender implements mailer.Sender by keeping every message in memory.
type RecordingSender struct {
	mu       sync.Mutex
	messages []mailer.Message

	// Err, when set, is returned from Send after recording the message.
	Err error
}

var _ mailer.Sender = (*RecordingSender)(nil)

// Send implements mailer.Sender.
func (s *RecordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.Err
}

// Messages returns a copy of the recorded messages.
func (s *RecordingSender) Messages() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mailer.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
