package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel change events travel on.
const DefaultChannel = "storefront:changes"

// Redis relays events through Redis pub/sub so every API instance sees
// commits made by the others. Run must be started for local subscribers to
// receive anything.
type Redis struct {
	client  *redis.Client
	channel string
	hub     *hub
	logger  *log.Logger
}

func NewRedis(client *redis.Client, channel string, logger *log.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	h := newHub(logger)
	return &Redis{client: client, channel: channel, hub: h, logger: h.logger}
}

func (r *Redis) Publish(ctx context.Context, paths []string) error {
	payload, err := json.Marshal(Event{Paths: paths, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

func (r *Redis) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return r.hub.subscribe(ctx)
}

// Run forwards messages from the Redis channel to local subscribers until
// ctx is cancelled.
func (r *Redis) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.logger.Printf("live: listening on redis channel=%s", r.channel)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("live: redis subscription closed")
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Printf("live: bad payload channel=%s error=%v", r.channel, err)
				continue
			}
			r.hub.broadcast(ev)
		}
	}
}
