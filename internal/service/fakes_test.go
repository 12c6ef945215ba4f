package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vogiaan1904/calorieclash/internal/models"
	repo "github.com/vogiaan1904/calorieclash/internal/repository/redis"
)

// memSessionRepo mimics the Redis repository: documents are stored as JSON
// so callers never share memory with the store, and UpdateIf succeeds only
// when the version still matches.
type memSessionRepo struct {
	mu           sync.Mutex
	docs         map[string][]byte
	versions     map[string]int64
	scoredSaves  int // writes that transitioned the doc from unscored to scored
	conflictNext int // force the next N UpdateIf calls to report a version conflict
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		docs:     map[string][]byte{},
		versions: map[string]int64{},
	}
}

func (m *memSessionRepo) Create(ctx context.Context, ss *models.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[ss.GameID]; ok {
		return repo.ErrAlreadyExists
	}

	data, err := json.Marshal(ss)
	if err != nil {
		return err
	}

	m.docs[ss.GameID] = data
	m.versions[ss.GameID] = 1
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, gameID string) (*models.GameSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.docs[gameID]
	if !ok {
		return nil, 0, repo.ErrNotFound
	}

	var ss models.GameSession
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, 0, err
	}

	return &ss, m.versions[gameID], nil
}

func (m *memSessionRepo) UpdateIf(ctx context.Context, ss *models.GameSession, expectedVersion int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.docs[ss.GameID]
	if !ok {
		return false, repo.ErrNotFound
	}
	if m.conflictNext > 0 {
		m.conflictNext--
		return false, nil
	}
	if m.versions[ss.GameID] != expectedVersion {
		return false, nil
	}

	data, err := json.Marshal(ss)
	if err != nil {
		return false, err
	}

	var before models.GameSession
	if err := json.Unmarshal(prev, &before); err != nil {
		return false, err
	}
	if !before.IsScored() && ss.IsScored() {
		m.scoredSaves++
	}

	m.docs[ss.GameID] = data
	m.versions[ss.GameID]++
	return true, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, gameID)
	delete(m.versions, gameID)
	return nil
}

func (m *memSessionRepo) scoredWriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoredSaves
}

// memCatalogRepo hands out a fixed catalog, or fails when broken.
type memCatalogRepo struct {
	items  []models.CatalogItem
	broken bool
	draws  int
	mu     sync.Mutex
}

func (m *memCatalogRepo) Draw(ctx context.Context, n int) ([]models.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.broken {
		return nil, errors.New("connection refused")
	}
	if len(m.items) == 0 {
		return nil, repo.ErrCatalogEmpty
	}

	m.draws++
	return append([]models.CatalogItem(nil), m.items...), nil
}

func (m *memCatalogRepo) Seed(ctx context.Context, items []models.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, items...)
	return nil
}

func (m *memCatalogRepo) PoolSize(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.items)), nil
}

// memLocker gives SetNX semantics for the per-session advisory lock.
type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	seq   int
	fails bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]string{}}
}

func (m *memLocker) Acquire(ctx context.Context, gameID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fails {
		return "", false, nil
	}
	if _, ok := m.held[gameID]; ok {
		return "", false, nil
	}

	m.seq++
	token := string(rune('a' + m.seq%26))
	m.held[gameID] = token
	return token, true, nil
}

func (m *memLocker) Release(ctx context.Context, gameID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.held[gameID] == token {
		delete(m.held, gameID)
	}
	return nil
}

// captureLogger records formatted log lines for assertions.
type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (c *captureLogger) record(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, line)
}

func (c *captureLogger) contains(sub string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if strings.Contains(e, sub) {
			return true
		}
	}
	return false
}

func (c *captureLogger) Debug(ctx context.Context, args ...any) { c.record(fmt.Sprint(args...)) }
func (c *captureLogger) Debugf(ctx context.Context, template string, args ...any) {
	c.record(fmt.Sprintf(template, args...))
}
func (c *captureLogger) Info(ctx context.Context, args ...any) { c.record(fmt.Sprint(args...)) }
func (c *captureLogger) Infof(ctx context.Context, template string, args ...any) {
	c.record(fmt.Sprintf(template, args...))
}
func (c *captureLogger) Warn(ctx context.Context, args ...any) { c.record(fmt.Sprint(args...)) }
func (c *captureLogger) Warnf(ctx context.Context, template string, args ...any) {
	c.record(fmt.Sprintf(template, args...))
}
func (c *captureLogger) Error(ctx context.Context, args ...any) { c.record(fmt.Sprint(args...)) }
func (c *captureLogger) Errorf(ctx context.Context, template string, args ...any) {
	c.record(fmt.Sprintf(template, args...))
}
func (c *captureLogger) Fatal(ctx context.Context, args ...any) { c.record(fmt.Sprint(args...)) }
func (c *captureLogger) Fatalf(ctx context.Context, template string, args ...any) {
	c.record(fmt.Sprintf(template, args...))
}
