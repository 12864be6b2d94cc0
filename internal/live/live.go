// Package live fans document change notifications out to subscribers such as
// the admin order feed.
package live

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

// Event lists the paths changed by one committed batch.
type Event struct {
	Paths []string  `json:"paths"`
	At    time.Time `json:"at"`
}

// Broker publishes change events and hands them to subscribers. Publish
// never blocks on a slow subscriber; such subscribers miss events.
type Broker interface {
	Publish(ctx context.Context, paths []string) error
	Subscribe(ctx context.Context) (<-chan Event, func())
}

const subscriberBuffer = 16

type hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	logger *log.Logger
}

func newHub(logger *log.Logger) *hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &hub{subs: make(map[chan Event]struct{}), logger: logger}
}

func (h *hub) subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel
}

func (h *hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Printf("live: subscriber full, dropped event paths=%v", ev.Paths)
		}
	}
}

// Memory is a single-process Broker.
type Memory struct {
	hub *hub
}

func NewMemory(logger *log.Logger) *Memory {
	return &Memory{hub: newHub(logger)}
}

func (m *Memory) Publish(_ context.Context, paths []string) error {
	m.hub.broadcast(Event{Paths: append([]string(nil), paths...), At: time.Now().UTC()})
	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return m.hub.subscribe(ctx)
}
