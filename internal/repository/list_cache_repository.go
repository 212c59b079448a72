package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// ListCacheRepository caches upstream section listings in Redis so that
// repeated list views do not hammer the registry. A nil client disables
// caching entirely.
type ListCacheRepository struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics cacheMetrics
}

// NewListCacheRepository constructs a list cache repository.
func NewListCacheRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger, metrics cacheMetrics) *ListCacheRepository {
	return &ListCacheRepository{client: client, ttl: ttl, logger: logger, metrics: metrics}
}

// ListKey builds the cache key for one section listing.
func ListKey(status string, ownerID int64) string {
	if ownerID != 0 {
		return fmt.Sprintf("captives:list:owner:%d", ownerID)
	}
	return "captives:list:status:" + status
}

// Get retrieves a cached listing, returning ErrCacheMiss when absent.
func (r *ListCacheRepository) Get(ctx context.Context, key string) ([]models.Captive, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.recordLookup(false)
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var captives []models.Captive
	if err := json.Unmarshal(raw, &captives); err != nil {
		return nil, fmt.Errorf("unmarshal cached list %s: %w", key, err)
	}
	r.recordLookup(true)
	return captives, nil
}

func (r *ListCacheRepository) recordLookup(hit bool) {
	if r.metrics != nil {
		r.metrics.RecordCacheOperation(hit)
	}
}

// Set stores a listing under the given key.
func (r *ListCacheRepository) Set(ctx context.Context, key string, captives []models.Captive) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(captives)
	if err != nil {
		return fmt.Errorf("marshal list for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate removes every cached listing. Mutations call this because a
// status change can move a record between sections.
func (r *ListCacheRepository) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	iter := r.client.Scan(ctx, 0, "captives:list:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan list keys: %w", err)
	}
	return nil
}
