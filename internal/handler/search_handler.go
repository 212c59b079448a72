package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
	"github.com/poshuk/captives-gateway/pkg/response"
)

type searchService interface {
	SearchByAppearance(ctx context.Context, session *models.Session, req *dto.AppearanceSearchRequest) ([]models.Captive, error)
	SearchByPhoto(ctx context.Context, session *models.Session, photo *dto.FileUpload, status string) ([]models.Captive, error)
	State(ctx context.Context, session *models.Session) (*dto.SearchStateResponse, error)
	Reset(ctx context.Context, session *models.Session) error
}

// SearchHandler exposes remote relevance search over the registry.
type SearchHandler struct {
	search searchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search searchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// ByAppearance godoc
// @Summary Search records by appearance description
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body dto.AppearanceSearchRequest true "Search payload"
// @Success 200 {object} response.Envelope
// @Router /search/appearance [post]
func (h *SearchHandler) ByAppearance(c *gin.Context) {
	var req dto.AppearanceSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid search payload"))
		return
	}
	captives, err := h.search.SearchByAppearance(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, captives, nil)
}

// ByPhoto godoc
// @Summary Search records by photo similarity
// @Tags Search
// @Accept mpfd
// @Produce json
// @Param photo formData file true "Photo to match"
// @Param status formData string false "Restrict to one status"
// @Success 200 {object} response.Envelope
// @Router /search/photo [post]
func (h *SearchHandler) ByPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo file is required"))
		return
	}
	reader, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open uploaded photo"))
		return
	}
	defer reader.Close()

	photo := &dto.FileUpload{Filename: file.Filename, Size: file.Size, Content: reader}
	captives, err := h.search.SearchByPhoto(c.Request.Context(), sessionFrom(c), photo, c.PostForm("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, captives, nil)
}

// State godoc
// @Summary Report the remote-search state
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search [get]
func (h *SearchHandler) State(c *gin.Context) {
	state, err := h.search.State(c.Request.Context(), sessionFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Reset godoc
// @Summary Discard the remote-search working set
// @Tags Search
// @Produce json
// @Success 204
// @Router /search [delete]
func (h *SearchHandler) Reset(c *gin.Context) {
	if err := h.search.Reset(c.Request.Context(), sessionFrom(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
