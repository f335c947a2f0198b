package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// Redis appends records to a Redis list, the layout Filebeat and Logstash
// redis inputs consume from.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis connects to addr. Records go to the list "<prefix>:records".
func NewRedis(addr, prefix string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    GenerateKey(prefix, "records"),
	}
}

// Ping checks the server is reachable.
func (s *Redis) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("sink: redis ping: %w", err)
	}
	return nil
}

// Key is the list the records are pushed to.
func (s *Redis) Key() string { return s.key }

func (s *Redis) Write(ctx context.Context, r journey.Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sink: marshal record: %w", err)
	}
	if err := s.client.RPush(ctx, s.key, b).Err(); err != nil {
		return fmt.Errorf("sink: redis rpush %s: %w", s.key, err)
	}
	return nil
}

func (s *Redis) Close(context.Context) error {
	return s.client.Close()
}

func GenerateKey(prefix, name string) string {
	return fmt.Sprintf("%s:%s", prefix, name)
}
