package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/pkg/config"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
)

func searchConfig() config.SearchConfig {
	return config.SearchConfig{SessionTTL: 30 * time.Minute, CookieName: "search_session"}
}

func runSession(t *testing.T, req *http.Request) (*models.Session, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	var captured *models.Session
	Session(searchConfig())(c)
	captured = SessionFromContext(c)
	require.NotNil(t, captured)
	return captured, w
}

func TestSessionMiddlewareForwardsCookiesAndHeaderToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/captives", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "cookie-tok"})
	req.Header.Set("X-CSRFToken", "header-tok")

	session, _ := runSession(t, req)

	assert.Len(t, session.Cookies, 2)
	assert.Equal(t, "header-tok", session.CSRFToken, "the header wins over the cookie")
}

func TestSessionMiddlewareFallsBackToCSRFCookie(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/captives", nil)
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: "cookie-tok"})

	session, _ := runSession(t, req)
	assert.Equal(t, "cookie-tok", session.CSRFToken)
}

func TestSessionMiddlewareIssuesSearchCookie(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/captives", nil)

	session, w := runSession(t, req)
	require.NotEmpty(t, session.SearchID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "search_session", cookies[0].Name)
	assert.Equal(t, session.SearchID, cookies[0].Value)
}

func TestSessionMiddlewareKeepsExistingSearchCookie(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/captives", nil)
	req.AddCookie(&http.Cookie{Name: "search_session", Value: "existing-id"})

	session, w := runSession(t, req)
	assert.Equal(t, "existing-id", session.SearchID)
	assert.Empty(t, w.Result().Cookies(), "no new cookie when one already exists")
}

type resolverStub struct {
	account *models.Account
	err     error
}

func (r *resolverStub) Me(ctx context.Context, session *models.Session) (*models.Account, error) {
	return r.account, r.err
}

func TestRequireAccountResolvesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/captives", nil)
	c.Set(ContextSessionKey, &models.Session{})

	RequireAccount(&resolverStub{account: &models.Account{ID: 4, Username: "olena"}})(c)

	session := SessionFromContext(c)
	require.NotNil(t, session.Account)
	assert.Equal(t, int64(4), session.Account.ID)
	assert.False(t, c.IsAborted())
}

func TestRequireAccountBlocksAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/captives", nil)
	c.Set(ContextSessionKey, &models.Session{})

	RequireAccount(&resolverStub{err: appErrors.ErrUnauthorized})(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
