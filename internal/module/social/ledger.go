package social

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ledger remembers exceptions and completed unfollows across runs
type Ledger interface {
	Exceptions(ctx context.Context) ([]string, error)
	AddExceptions(ctx context.Context, names ...string) error
	IsUnfollowed(ctx context.Context, name string) (bool, error)
	MarkUnfollowed(ctx context.Context, name string) error
}

// RedisLedger keeps both sets per account in Redis
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger scopes the ledger to one account
func NewRedisLedger(client *redis.Client, account string) *RedisLedger {
	return &RedisLedger{
		client: client,
		prefix: "unfollow:" + NormalizeUsername(account),
	}
}

func (l *RedisLedger) exceptionsKey() string { return l.prefix + ":exceptions" }
func (l *RedisLedger) unfollowedKey() string { return l.prefix + ":unfollowed" }

func (l *RedisLedger) Exceptions(ctx context.Context) ([]string, error) {
	names, err := l.client.SMembers(ctx, l.exceptionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers: %w", err)
	}
	return names, nil
}

func (l *RedisLedger) AddExceptions(ctx context.Context, names ...string) error {
	members := normalizedMembers(names)
	if len(members) == 0 {
		return nil
	}
	if err := l.client.SAdd(ctx, l.exceptionsKey(), members...).Err(); err != nil {
		return fmt.Errorf("sadd: %w", err)
	}
	return nil
}

func (l *RedisLedger) IsUnfollowed(ctx context.Context, name string) (bool, error) {
	ok, err := l.client.SIsMember(ctx, l.unfollowedKey(), NormalizeUsername(name)).Result()
	if err != nil {
		return false, fmt.Errorf("sismember: %w", err)
	}
	return ok, nil
}

func (l *RedisLedger) MarkUnfollowed(ctx context.Context, name string) error {
	if err := l.client.SAdd(ctx, l.unfollowedKey(), NormalizeUsername(name)).Err(); err != nil {
		return fmt.Errorf("sadd: %w", err)
	}
	return nil
}

func normalizedMembers(names []string) []any {
	members := make([]any, 0, len(names))
	for _, n := range names {
		if n = NormalizeUsername(n); n != "" {
			members = append(members, n)
		}
	}
	return members
}
