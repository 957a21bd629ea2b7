package dictionary

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the words in a Redis set, so a team can share one dictionary.
type Redis struct {
	client *redis.Client
	key    string
	owned  bool
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client. Close does not close it.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// OpenRedis connects using opts and checks the server is reachable.
func OpenRedis(ctx context.Context, opts Options) (*Redis, error) {
	addr := opts.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	r := NewRedis(client, opts.RedisKey)
	r.owned = true
	return r, nil
}

// Key returns the Redis key of the set.
func (r *Redis) Key() string {
	return r.key
}

func (r *Redis) Add(ctx context.Context, words ...string) error {
	members, err := r.members(words)
	if err != nil || len(members) == 0 {
		return err
	}
	if err := r.client.SAdd(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, words ...string) error {
	members, err := r.members(words)
	if err != nil || len(members) == 0 {
		return err
	}
	if err := r.client.SRem(ctx, r.key, members...).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Contains(ctx context.Context, word string) (bool, error) {
	n, err := Normalize(word)
	if err != nil {
		return false, nil //nolint:nilerr // invalid words are never present
	}
	ok, err := r.client.SIsMember(ctx, r.key, n).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember %s: %w", r.key, err)
	}
	return ok, nil
}

// Words returns the members in sorted order.
func (r *Redis) Words(ctx context.Context) ([]string, error) {
	words, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", r.key, err)
	}
	return sorted(words), nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) members(words []string) ([]any, error) {
	norm, err := normalizeAll(words)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(norm))
	for i, w := range norm {
		out[i] = w
	}
	return out, nil
}
