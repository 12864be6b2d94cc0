package cart

import (
	"context"
	"sync"

	"latthi-storefront/internal/domain"
)

// Memory keeps encoded carts in process. Used by tests and the memory driver.
type Memory struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{carts: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, session string) ([]domain.CartLine, error) {
	m.mu.Lock()
	raw, ok := m.carts[key(session)]
	m.mu.Unlock()
	if !ok {
		return []domain.CartLine{}, nil
	}
	return Unmarshal(raw)
}

func (m *Memory) Save(_ context.Context, session string, lines []domain.CartLine) error {
	raw, err := Marshal(lines)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[key(session)] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, session string) error {
	m.mu.Lock()
	delete(m.carts, key(session))
	m.mu.Unlock()
	return nil
}
