package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const redisChannel = "paperhub:events"

// RedisHub relays events through Redis pub/sub so every API instance
// delivers them to its own local subscribers.
type RedisHub struct {
	*LocalHub
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisHub connects to the Redis server at url (redis://host:port/db).
func NewRedisHub(ctx context.Context, url string, log zerolog.Logger) (*RedisHub, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach Redis: %w", err)
	}

	return &RedisHub{LocalHub: NewLocalHub(), client: client, log: log}, nil
}

// Publish sends the event to Redis. If Redis is unreachable the event is
// still delivered locally.
func (h *RedisHub) Publish(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err == nil {
		err = h.client.Publish(ctx, redisChannel, data).Err()
	}
	if err != nil {
		h.log.Warn().Err(err).Str("topic", e.Topic).Msg("⚠️  Redis publish failed, delivering locally")
		h.LocalHub.Publish(ctx, e)
	}
}

// Run relays Redis messages to local subscribers until ctx is done.
func (h *RedisHub) Run(ctx context.Context) {
	pubsub := h.client.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				h.log.Warn().Err(err).Msg("dropping malformed live event")
				continue
			}
			h.LocalHub.Publish(ctx, e)
		}
	}
}

// Close releases the Redis connection.
func (h *RedisHub) Close() error {
	return h.client.Close()
}
