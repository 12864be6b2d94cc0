package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"latthi-storefront/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger}
}

func (r *redisRepo) Load(ctx context.Context, session string) ([]domain.CartLine, error) {
	raw, err := r.client.Get(ctx, key(session)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.CartLine{}, nil
		}
		r.logger.Printf("cart repo: load session=%s error=%v", session, err)
		return nil, err
	}
	return Unmarshal(raw)
}

func (r *redisRepo) Save(ctx context.Context, session string, lines []domain.CartLine) error {
	raw, err := Marshal(lines)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key(session), raw, r.ttl).Err(); err != nil {
		r.logger.Printf("cart repo: save session=%s error=%v", session, err)
		return err
	}
	return nil
}

func (r *redisRepo) Clear(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, key(session)).Err(); err != nil {
		r.logger.Printf("cart repo: clear session=%s error=%v", session, err)
		return err
	}
	return nil
}
