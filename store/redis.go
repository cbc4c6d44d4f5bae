package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/arkantrust/payment-api/backend/models"
)

const (
	redisSeqKey    = "payments:seq"
	redisKeyPrefix = "payments:"
)

// RedisStore keeps payments as JSON strings in Redis. IDs come from INCR on a
// single counter key, which Redis executes atomically.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to addr and checks that the server answers.
func NewRedis(ctx context.Context, addr string) (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{Addr: addr})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrUnavailable, addr, err)
	}
	return &RedisStore{client: c}, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Create takes the next counter value as the id and stores p under it. The
// counter is not rolled back if the write fails, so the id stays consumed.
func (s *RedisStore) Create(ctx context.Context, p models.Payment) (models.Payment, error) {
	id, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return models.Payment{}, fmt.Errorf("%w: assign id: %v", ErrUnavailable, err)
	}
	p.ID = id

	data, err := json.Marshal(p)
	if err != nil {
		return models.Payment{}, err
	}

	set, err := s.client.SetNX(ctx, redisKey(id), data, 0).Result()
	if err != nil {
		return models.Payment{}, fmt.Errorf("%w: store payment %d: %v", ErrUnavailable, id, err)
	}
	if !set {
		return models.Payment{}, fmt.Errorf("%w: id %d already exists", ErrConstraint, id)
	}

	return p, nil
}

func redisKey(id int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, id)
}
