package notification

import (
	"context"
	"sync"
)

// Recorder is an in-memory Notifier for tests. Fail, when set, decides per
// message whether delivery errors.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Fail func(Message) error
}

func (r *Recorder) Send(_ context.Context, message Message) error {
	if r.Fail != nil {
		if err := r.Fail(message); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, message)
	return nil
}

// Sent returns a copy of the delivered messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

// Last returns the most recent message of kind, if any.
func (r *Recorder) Last(kind string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind {
			return r.sent[i], true
		}
	}
	return Message{}, false
}
