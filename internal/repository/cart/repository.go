package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"latthi-storefront/internal/domain"
)

// DefaultTTL is how long an untouched cart session is kept.
const DefaultTTL = 30 * 24 * time.Hour

// Repository persists cart lines per cart session. Implementations store the
// encoded form produced by Marshal, never live Go values.
type Repository interface {
	// Load returns an empty slice for an unknown session.
	Load(ctx context.Context, session string) ([]domain.CartLine, error)
	Save(ctx context.Context, session string, lines []domain.CartLine) error
	Clear(ctx context.Context, session string) error
}

type envelope struct {
	Version int               `json:"v"`
	Lines   []domain.CartLine `json:"lines"`
}

const envelopeVersion = 1

// Marshal is the serialization boundary for stored carts.
func Marshal(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(envelope{Version: envelopeVersion, Lines: lines})
}

// Unmarshal reads a stored cart. A bare JSON array, the shape carts were
// kept in before the envelope, is accepted too.
func Unmarshal(raw []byte) ([]domain.CartLine, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Version > envelopeVersion {
			return nil, fmt.Errorf("cart encoding version %d not supported", env.Version)
		}
		if env.Lines == nil {
			env.Lines = []domain.CartLine{}
		}
		return env.Lines, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func key(session string) string {
	return "cart:" + session
}
