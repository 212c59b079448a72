package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/internal/service"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
	"github.com/poshuk/captives-gateway/pkg/response"
)

type flyerService interface {
	CreateJob(ctx context.Context, session *models.Session, captiveID int64) (*dto.FlyerJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.FlyerStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.FlyerDownload, error)
}

// FlyerHandler exposes flyer PDF generation.
type FlyerHandler struct {
	flyers flyerService
}

// NewFlyerHandler constructs handler.
func NewFlyerHandler(flyers flyerService) *FlyerHandler {
	return &FlyerHandler{flyers: flyers}
}

// Create godoc
// @Summary Queue a flyer render for a record
// @Tags Flyers
// @Produce json
// @Param id path int true "Record ID"
// @Success 202 {object} response.Envelope
// @Router /captives/{id}/flyer [post]
func (h *FlyerHandler) Create(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.flyers.CreateJob(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Report flyer job progress
// @Tags Flyers
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id} [get]
func (h *FlyerHandler) Status(c *gin.Context) {
	status, err := h.flyers.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a rendered flyer
// @Tags Flyers
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /flyers/download/{token} [get]
func (h *FlyerHandler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "download token required"))
		return
	}
	download, err := h.flyers.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stat flyer file"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", download.File, nil)
}
