package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
	"github.com/poshuk/captives-gateway/pkg/response"
)

type captiveService interface {
	List(ctx context.Context, session *models.Session, q dto.ListQuery) (*dto.ListResponse, error)
	Get(ctx context.Context, session *models.Session, id int64) (*models.Captive, error)
	Create(ctx context.Context, session *models.Session, form *dto.CaptiveForm) (*dto.MutationResponse, error)
	Update(ctx context.Context, session *models.Session, id int64, form *dto.CaptiveForm) (*dto.MutationResponse, error)
	Delete(ctx context.Context, session *models.Session, id int64) (*dto.MutationResponse, error)
}

// CaptiveHandler exposes the record sections and mutations.
type CaptiveHandler struct {
	captives captiveService
}

// NewCaptiveHandler constructs handler.
func NewCaptiveHandler(captives captiveService) *CaptiveHandler {
	return &CaptiveHandler{captives: captives}
}

// List godoc
// @Summary List records for a section
// @Tags Captives
// @Produce json
// @Param status query string false "Section: searching, informed, deceased, reunited or archive"
// @Param user_id query int false "Owner account ID"
// @Param q query string false "Name query"
// @Param person_type query string false "military or civilian"
// @Param region query string false "Region substring"
// @Param brigade query string false "Brigade substring"
// @Param circumstances query string false "Circumstances substring"
// @Param appearance query string false "Appearance substring"
// @Param born_after query string false "Lower date-of-birth bound (YYYY-MM-DD)"
// @Param born_before query string false "Upper date-of-birth bound (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /captives [get]
func (h *CaptiveHandler) List(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.captives.List(c.Request.Context(), sessionFrom(c), *query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Get godoc
// @Summary Fetch one record
// @Tags Captives
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /captives/{id} [get]
func (h *CaptiveHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	captive, err := h.captives.Get(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, captive, nil)
}

// Create godoc
// @Summary Create a record
// @Tags Captives
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /captives [post]
func (h *CaptiveHandler) Create(c *gin.Context) {
	form, err := bindCaptiveForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.captives.Create(c.Request.Context(), sessionFrom(c), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Update godoc
// @Summary Update an owned record
// @Tags Captives
// @Accept mpfd
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /captives/{id} [patch]
func (h *CaptiveHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	form, err := bindCaptiveForm(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.captives.Update(c.Request.Context(), sessionFrom(c), id, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Delete godoc
// @Summary Delete an owned record
// @Tags Captives
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /captives/{id} [delete]
func (h *CaptiveHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := h.captives.Delete(c.Request.Context(), sessionFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid record id")
	}
	return id, nil
}

func parseListQuery(c *gin.Context) (*dto.ListQuery, error) {
	query := &dto.ListQuery{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		Criteria: models.FilterCriteria{
			Region:        c.Query("region"),
			Brigade:       c.Query("brigade"),
			Circumstances: c.Query("circumstances"),
			Appearance:    c.Query("appearance"),
		},
	}
	if raw := c.Query("person_type"); raw != "" {
		personType, err := models.ParsePersonType(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "person_type must be military or civilian")
		}
		query.Criteria.PersonType = personType
	}
	if raw := c.Query("user_id"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ownerID <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid user id")
		}
		query.OwnerID = ownerID
	}
	var err error
	if query.Criteria.StartDate, err = parseDateParam(c, "born_after"); err != nil {
		return nil, err
	}
	if query.Criteria.EndDate, err = parseDateParam(c, "born_before"); err != nil {
		return nil, err
	}
	return query, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}

func bindCaptiveForm(c *gin.Context) (*dto.CaptiveForm, error) {
	var form dto.CaptiveForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid form payload")
	}
	file, err := c.FormFile("picture")
	if err == nil && file != nil {
		reader, err := file.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open uploaded picture")
		}
		form.Picture = &dto.FileUpload{
			Filename: file.Filename,
			Size:     file.Size,
			Content:  reader,
		}
	}
	return &form, nil
}
