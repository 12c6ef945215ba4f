package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vogiaan1904/calorieclash/internal/models"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

var (
	// ErrNotFound is returned when no session document exists for the key.
	ErrNotFound = errors.New("session document not found")
	// ErrAlreadyExists is returned by Create when the key is taken.
	ErrAlreadyExists = errors.New("session document already exists")
)

// SessionRepository persists game session documents. Every write is
// conditional on the document version so that concurrent read-modify-write
// cycles on the same session cannot lose an update.
type SessionRepository interface {
	Create(ctx context.Context, ss *models.GameSession) error
	Get(ctx context.Context, gameID string) (*models.GameSession, int64, error)
	UpdateIf(ctx context.Context, ss *models.GameSession, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, gameID string) error
}

type redisSessionRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisSessionRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) SessionRepository {
	return &redisSessionRepository{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

// createScript writes the document and its version counter only when the
// key is free, so two concurrent creates of the same id cannot both win.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('SET', KEYS[2], '1', 'PX', ARGV[2])
return 1
`)

// updateScript replaces the document only when the version counter still
// holds the value the caller read, then bumps it.
var updateScript = redis.NewScript(`
local ver = redis.call('GET', KEYS[2])
if not ver then
	return -1
end
if ver ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[3])
return 1
`)

func (r *redisSessionRepository) Create(ctx context.Context, ss *models.GameSession) error {
	data, err := json.Marshal(ss)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	keys := []string{r.sessionKey(ss.GameID), r.versionKey(ss.GameID)}
	res, err := createScript.Run(ctx, r.cli, keys, data, r.ttl.Milliseconds()).Int()
	if err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Create: %v", err)
		return err
	}

	if res == 0 {
		return ErrAlreadyExists
	}

	r.l.Debugf(ctx, "session created: game_id=%s leader_id=%s", ss.GameID, ss.LeaderID)

	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, gameID string) (*models.GameSession, int64, error) {
	pipe := r.cli.Pipeline()
	docCmd := pipe.Get(ctx, r.sessionKey(gameID))
	verCmd := pipe.Get(ctx, r.versionKey(gameID))

	if _, err := pipe.Exec(ctx); err != nil {
		if err == redis.Nil {
			return nil, 0, ErrNotFound
		}

		r.l.Errorf(ctx, "redisSessionRepository.Get: %v", err)
		return nil, 0, err
	}

	var ss models.GameSession
	if err := json.Unmarshal([]byte(docCmd.Val()), &ss); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Get: %v", err)
		return nil, 0, err
	}

	ver, err := verCmd.Int64()
	if err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Get: %v", err)
		return nil, 0, err
	}

	return &ss, ver, nil
}

func (r *redisSessionRepository) UpdateIf(ctx context.Context, ss *models.GameSession, expectedVersion int64) (bool, error) {
	ss.UpdatedAt = time.Now()

	data, err := json.Marshal(ss)
	if err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.UpdateIf: %v", err)
		return false, err
	}

	keys := []string{r.sessionKey(ss.GameID), r.versionKey(ss.GameID)}
	res, err := updateScript.Run(ctx, r.cli, keys, expectedVersion, data, r.ttl.Milliseconds()).Int()
	if err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.UpdateIf: %v", err)
		return false, err
	}

	switch res {
	case -1:
		return false, ErrNotFound
	case 0:
		r.l.Debugf(ctx, "session version conflict: game_id=%s expected=%d", ss.GameID, expectedVersion)
		return false, nil
	}

	return true, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, gameID string) error {
	pipe := r.cli.Pipeline()
	pipe.Del(ctx, r.sessionKey(gameID))
	pipe.Del(ctx, r.versionKey(gameID))

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisSessionRepository.Delete: %v", err)
		return err
	}

	r.l.Debugf(ctx, "session deleted: game_id=%s", gameID)

	return nil
}

func (r *redisSessionRepository) sessionKey(gameID string) string {
	return fmt.Sprintf("calorieclash:session:%s", gameID)
}

func (r *redisSessionRepository) versionKey(gameID string) string {
	return fmt.Sprintf("calorieclash:session:%s:ver", gameID)
}
