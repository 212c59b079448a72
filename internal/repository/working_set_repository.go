package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/poshuk/captives-gateway/internal/models"
)

// WorkingSetRepository persists remote-search result sets in Redis, keyed
// by the caller's search-session ID. While a working set exists the list
// endpoints serve it verbatim instead of fetching from the upstream.
type WorkingSetRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewWorkingSetRepository constructs a working set repository.
func NewWorkingSetRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *WorkingSetRepository {
	return &WorkingSetRepository{client: client, ttl: ttl, logger: logger}
}

func workingSetKey(searchID string) string {
	return "search:workingset:" + searchID
}

// Replace stores the result set wholesale, discarding any previous set
// for the same search session. An empty result list is still a valid
// working set and is stored as such.
func (r *WorkingSetRepository) Replace(ctx context.Context, searchID string, captives []models.Captive) error {
	if captives == nil {
		captives = []models.Captive{}
	}
	payload, err := json.Marshal(captives)
	if err != nil {
		return fmt.Errorf("marshal working set for %s: %w", searchID, err)
	}
	if err := r.client.Set(ctx, workingSetKey(searchID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set working set %s: %w", searchID, err)
	}
	return nil
}

// Fetch returns the working set and whether one is active. A missing key
// means no remote search is in effect, not an error.
func (r *WorkingSetRepository) Fetch(ctx context.Context, searchID string) ([]models.Captive, bool, error) {
	raw, err := r.client.Get(ctx, workingSetKey(searchID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get working set %s: %w", searchID, err)
	}

	var captives []models.Captive
	if err := json.Unmarshal(raw, &captives); err != nil {
		// A corrupt set is unrecoverable; drop it so the caller falls
		// back to the regular listing.
		r.logger.Warn("dropping corrupt working set", zap.String("search_id", searchID), zap.Error(err))
		_ = r.client.Del(ctx, workingSetKey(searchID)).Err()
		return nil, false, nil
	}
	return captives, true, nil
}

// Clear discards the working set, restoring the regular listing.
func (r *WorkingSetRepository) Clear(ctx context.Context, searchID string) error {
	if err := r.client.Del(ctx, workingSetKey(searchID)).Err(); err != nil {
		return fmt.Errorf("redis delete working set %s: %w", searchID, err)
	}
	return nil
}
