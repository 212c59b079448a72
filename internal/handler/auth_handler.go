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

type sessionService interface {
	Me(ctx context.Context, session *models.Session) (*models.Account, error)
	Login(ctx context.Context, session *models.Session, req *dto.LoginRequest) (*models.Account, []*http.Cookie, error)
	Logout(ctx context.Context, session *models.Session) ([]*http.Cookie, error)
	Register(ctx context.Context, session *models.Session, req *dto.RegisterRequest) (*models.Account, []*http.Cookie, error)
	UpdateProfile(ctx context.Context, session *models.Session, id int64, req *dto.UpdateProfileRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, session *models.Session, id int64) error
}

// AuthHandler fronts the upstream's cookie-based authentication. Every
// Set-Cookie the upstream answers with is relayed verbatim, so the
// browser session stays in sync with the registry.
type AuthHandler struct {
	sessions sessionService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(sessions sessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

func relayCookies(c *gin.Context, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		http.SetCookie(c.Writer, cookie)
	}
}

// Me godoc
// @Summary Resolve the current account
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.sessions.Me(c.Request.Context(), sessionFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// Login godoc
// @Summary Open an upstream session
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid login payload"))
		return
	}
	account, cookies, err := h.sessions.Login(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	relayCookies(c, cookies)
	response.JSON(c, http.StatusOK, account, nil)
}

// Logout godoc
// @Summary Close the upstream session
// @Tags Auth
// @Produce json
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookies, err := h.sessions.Logout(c.Request.Context(), sessionFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	relayCookies(c, cookies)
	response.NoContent(c)
}

// Register godoc
// @Summary Create an account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration payload"))
		return
	}
	account, cookies, err := h.sessions.Register(c.Request.Context(), sessionFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	relayCookies(c, cookies)
	response.Created(c, account)
}

// UpdateProfile godoc
// @Summary Update the caller's own account
// @Tags Auth
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param payload body dto.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [patch]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid profile payload"))
		return
	}
	account, err := h.sessions.UpdateProfile(c.Request.Context(), sessionFrom(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// DeleteAccount godoc
// @Summary Delete the caller's own account
// @Tags Auth
// @Produce json
// @Param id path int true "Account ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sessions.DeleteAccount(c.Request.Context(), sessionFrom(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
