package broker

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const inboxKeyPrefix = "inbox:version:"

// RedisInboxBroker implements InboxBroker with one INCR counter per user.
type RedisInboxBroker struct {
	client *redis.Client
	owned  bool
}

// NewRedisInboxBroker dials redisURL and owns the resulting client.
func NewRedisInboxBroker(ctx context.Context, redisURL string) (*RedisInboxBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisInboxBroker{client: client, owned: true}, nil
}

// NewRedisInboxBrokerFromClient shares an existing client; Close leaves it open.
func NewRedisInboxBrokerFromClient(client *redis.Client) *RedisInboxBroker {
	return &RedisInboxBroker{client: client}
}

func inboxKey(userID string) string {
	return inboxKeyPrefix + userID
}

func (r *RedisInboxBroker) Bump(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, id := range userIDs {
		pipe.Incr(ctx, inboxKey(id))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisInboxBroker) Version(ctx context.Context, userID string) (int64, error) {
	v, err := r.client.Get(ctx, inboxKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *RedisInboxBroker) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
