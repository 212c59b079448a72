package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshuk/captives-gateway/internal/dto"
	"github.com/poshuk/captives-gateway/internal/models"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

type sessionServiceMock struct {
	account *models.Account
	cookies []*http.Cookie
	err     error

	deleteCalls int
}

func (m *sessionServiceMock) Me(ctx context.Context, session *models.Session) (*models.Account, error) {
	return m.account, m.err
}

func (m *sessionServiceMock) Login(ctx context.Context, session *models.Session, req *dto.LoginRequest) (*models.Account, []*http.Cookie, error) {
	return m.account, m.cookies, m.err
}

func (m *sessionServiceMock) Logout(ctx context.Context, session *models.Session) ([]*http.Cookie, error) {
	return m.cookies, m.err
}

func (m *sessionServiceMock) Register(ctx context.Context, session *models.Session, req *dto.RegisterRequest) (*models.Account, []*http.Cookie, error) {
	return m.account, m.cookies, m.err
}

func (m *sessionServiceMock) UpdateProfile(ctx context.Context, session *models.Session, id int64, req *dto.UpdateProfileRequest) (*models.Account, error) {
	return m.account, m.err
}

func (m *sessionServiceMock) DeleteAccount(ctx context.Context, session *models.Session, id int64) error {
	m.deleteCalls++
	return m.err
}

func TestAuthHandlerLoginRelaysSetCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{
		account: &models.Account{ID: 4, Username: "olena"},
		cookies: []*http.Cookie{
			{Name: "sessionid", Value: "fresh", Path: "/"},
			{Name: "csrftoken", Value: "fresh-tok", Path: "/"},
		},
	}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.LoginRequest{Username: "olena", Password: "secret"})
	c, w := newGinContext(http.MethodPost, "/auth/login", payload)
	withSession(c)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	setCookies := w.Result().Cookies()
	names := make([]string, 0, len(setCookies))
	for _, cookie := range setCookies {
		names = append(names, cookie.Name)
	}
	assert.Contains(t, names, "sessionid")
	assert.Contains(t, names, "csrftoken")
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{err: appErrors.ErrUnauthorized}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(dto.LoginRequest{Username: "olena", Password: "wrong"})
	c, w := newGinContext(http.MethodPost, "/auth/login", payload)
	withSession(c)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{account: &models.Account{ID: 4, Username: "olena", Email: "olena@example.com"}}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	withSession(c)

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Account `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "olena", envelope.Data.Username)
}

func TestAuthHandlerLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{cookies: []*http.Cookie{{Name: "sessionid", Value: "", MaxAge: -1}}}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/auth/logout", nil)
	withSession(c)

	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, w.Result().Cookies(), 1)
}

func TestAuthHandlerDeleteAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/users/4", nil)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	withSession(c)

	handler.DeleteAccount(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, mockSvc.deleteCalls)
}
