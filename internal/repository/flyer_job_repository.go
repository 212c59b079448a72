package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

// Flyer job state is kept for a day, long enough for a caller to poll
// and download, short enough that Redis does the cleanup for us.
const flyerJobTTL = 24 * time.Hour

// FlyerJobRepository tracks flyer generation jobs in Redis.
type FlyerJobRepository struct {
	client *redis.Client
}

// NewFlyerJobRepository constructs a flyer job repository.
func NewFlyerJobRepository(client *redis.Client) *FlyerJobRepository {
	return &FlyerJobRepository{client: client}
}

func flyerJobKey(id string) string {
	return "flyer:job:" + id
}

// Save upserts job state.
func (r *FlyerJobRepository) Save(ctx context.Context, job *models.FlyerJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal flyer job %s: %w", job.ID, err)
	}
	if err := r.client.Set(ctx, flyerJobKey(job.ID), payload, flyerJobTTL).Err(); err != nil {
		return fmt.Errorf("redis set flyer job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads job state, returning ErrNotFound for unknown or expired jobs.
func (r *FlyerJobRepository) Get(ctx context.Context, id string) (*models.FlyerJob, error) {
	raw, err := r.client.Get(ctx, flyerJobKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "flyer job not found")
		}
		return nil, fmt.Errorf("redis get flyer job %s: %w", id, err)
	}
	var job models.FlyerJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("unmarshal flyer job %s: %w", id, err)
	}
	return &job, nil
}
