package app

import "sync"

// Event types on the change stream.
const (
	EventChanged  = "changed"
	EventSync     = "sync"
	EventVerified = "verified"
)

type Event struct {
	Type string `json:"type"`
	Op   string `json:"op,omitempty"`
	Data any    `json:"data,omitempty"`
}

// eventHub fans events out to subscribers. A subscriber that falls behind
// loses events rather than blocking the publisher.
type eventHub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan Event]struct{})}
}

func (h *eventHub) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *eventHub) publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
