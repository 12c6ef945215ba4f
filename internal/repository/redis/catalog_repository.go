package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vogiaan1904/calorieclash/internal/models"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

// ErrCatalogEmpty is returned when a draw is requested from an unseeded pool.
var ErrCatalogEmpty = errors.New("catalog pool is empty")

const catalogPoolKey = "calorieclash:catalog:pool"

// CatalogRepository supplies the randomized item catalog assigned to each
// session. Items live in a Redis set seeded out of band.
type CatalogRepository interface {
	Draw(ctx context.Context, n int) ([]models.CatalogItem, error)
	Seed(ctx context.Context, items []models.CatalogItem) error
	PoolSize(ctx context.Context) (int64, error)
}

type redisCatalogRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisCatalogRepository(cli *redis.Client, l logger.Logger) CatalogRepository {
	return &redisCatalogRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisCatalogRepository) Draw(ctx context.Context, n int) ([]models.CatalogItem, error) {
	raw, err := r.cli.SRandMemberN(ctx, catalogPoolKey, int64(n)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisCatalogRepository.Draw: %v", err)
		return nil, err
	}

	if len(raw) == 0 {
		return nil, ErrCatalogEmpty
	}

	items := make([]models.CatalogItem, 0, len(raw))
	for _, v := range raw {
		var item models.CatalogItem
		if err := json.Unmarshal([]byte(v), &item); err != nil {
			r.l.Errorf(ctx, "redisCatalogRepository.Draw: %v", err)
			return nil, fmt.Errorf("malformed catalog entry: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *redisCatalogRepository) Seed(ctx context.Context, items []models.CatalogItem) error {
	pipe := r.cli.Pipeline()
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal catalog item %q: %w", item.Name, err)
		}
		pipe.SAdd(ctx, catalogPoolKey, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Errorf(ctx, "redisCatalogRepository.Seed: %v", err)
		return err
	}

	r.l.Infof(ctx, "catalog pool seeded with %d items", len(items))

	return nil
}

func (r *redisCatalogRepository) PoolSize(ctx context.Context) (int64, error) {
	size, err := r.cli.SCard(ctx, catalogPoolKey).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisCatalogRepository.PoolSize: %v", err)
		return 0, err
	}

	return size, nil
}
