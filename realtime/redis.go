package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cims/config"
)

// channel is the Redis pub/sub channel carrying complaint change events.
const channel = "cims:complaints"

// RedisFeed implements Feed over Redis pub/sub so that every running instance
// sees changes made through any other instance.
type RedisFeed struct {
	client *redis.Client
}

// NewRedisFeed connects to Redis and verifies the connection.
func NewRedisFeed(ctx context.Context, cfg config.RedisConfig) (*RedisFeed, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("realtime: ping redis: %w", err)
	}
	return &RedisFeed{client: client}, nil
}

// PublishComplaintChanged broadcasts a change event for the complaint.
func (f *RedisFeed) PublishComplaintChanged(ctx context.Context, complaintID string) error {
	payload, err := json.Marshal(ChangeEvent{
		ComplaintID: complaintID,
		ChangedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}
	if err := f.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("realtime: publish: %w", err)
	}
	return nil
}

// Subscribe listens on the change channel and forwards decoded events until
// the cancel function is called or ctx ends.
func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan ChangeEvent, func(), error) {
	pubsub := f.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("realtime: subscribe: %w", err)
	}

	out := make(chan ChangeEvent)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("realtime: dropping malformed change event")
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { pubsub.Close() }
	return out, cancel, nil
}

// Close releases the Redis connection.
func (f *RedisFeed) Close() error {
	return f.client.Close()
}
