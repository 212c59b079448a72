package dto

import "github.com/poshuk/captives-gateway/internal/models"

// FlyerJobResponse is returned after enqueueing a flyer job.
type FlyerJobResponse struct {
	ID     string             `json:"id"`
	Status models.FlyerStatus `json:"status"`
}

// FlyerStatusResponse exposes job progress metadata.
type FlyerStatusResponse struct {
	ID        string             `json:"id"`
	Status    models.FlyerStatus `json:"status"`
	ResultURL *string            `json:"resultUrl,omitempty"`
	Error     *string            `json:"error,omitempty"`
}
