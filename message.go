package evtag

import "sync"

// Message is a Holder with exported fields.
type Message struct {
	EventName string
	Data      any
}

// NewMessage creates a Message.
func NewMessage(name string, payload any) Message {
	return Message{EventName: name, Data: payload}
}

// Name returns the recorded event name.
func (m Message) Name() string { return m.EventName }

// Payload returns the recorded payload.
func (m Message) Payload() any { return m.Data }

// Recorder is a Sink that keeps every published message in order.
// All methods are safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Publish records the message.
func (r *Recorder) Publish(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, NewMessage(name, payload))
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset discards all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
