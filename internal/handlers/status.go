package handlers

import (
	"sync"

	"github.com/tmaxmax/go-sse"
)

// statusReplayer remembers the last published status event and sends it to every page that
// subscribes, so a page that connects, or reconnects after losing the stream, starts from the
// current state instead of waiting for the next exchange. Other events are not replayed.
type statusReplayer struct {
	mu   sync.Mutex
	last *sse.Message
}

func newStatusReplayer(initial *sse.Message) *statusReplayer {
	return &statusReplayer{last: initial}
}

func statusMessage(state string) *sse.Message {
	msg := &sse.Message{Type: statusSSEType}
	msg.AppendData(state)
	return msg
}

func (r *statusReplayer) Put(msg *sse.Message, _ []string) (*sse.Message, error) {
	if msg.Type == statusSSEType {
		r.mu.Lock()
		r.last = msg
		r.mu.Unlock()
	}
	return msg, nil
}

// Replay ignores the subscription's last event ID: the current status is always sent.
func (r *statusReplayer) Replay(sub sse.Subscription) error {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	if err := sub.Client.Send(last); err != nil {
		return err
	}
	return sub.Client.Flush()
}
