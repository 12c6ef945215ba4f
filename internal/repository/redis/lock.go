package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

// SessionLocker is a per-session advisory lock. It guards the few session
// operations that must hold exclusivity across an external call (catalog
// redraw on rematch), where the document CAS alone cannot help.
type SessionLocker interface {
	Acquire(ctx context.Context, gameID string) (token string, ok bool, err error)
	Release(ctx context.Context, gameID, token string) error
}

type redisSessionLocker struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisSessionLocker(cli *redis.Client, ttl time.Duration, l logger.Logger) SessionLocker {
	return &redisSessionLocker{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

// releaseScript deletes the lock only when the caller still owns it, so a
// holder whose TTL lapsed cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

func (r *redisSessionLocker) Acquire(ctx context.Context, gameID string) (string, bool, error) {
	token := uuid.New().String()

	ok, err := r.cli.SetNX(ctx, r.lockKey(gameID), token, r.ttl).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisSessionLocker.Acquire: %v", err)
		return "", false, err
	}

	return token, ok, nil
}

func (r *redisSessionLocker) Release(ctx context.Context, gameID, token string) error {
	if err := releaseScript.Run(ctx, r.cli, []string{r.lockKey(gameID)}, token).Err(); err != nil {
		r.l.Errorf(ctx, "redisSessionLocker.Release: %v", err)
		return err
	}

	return nil
}

func (r *redisSessionLocker) lockKey(gameID string) string {
	return fmt.Sprintf("calorieclash:session:%s:lock", gameID)
}
