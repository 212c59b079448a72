package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/poshuk/captives-gateway/internal/models"
	"github.com/poshuk/captives-gateway/pkg/config"
	appErrors "github.com/poshuk/captives-gateway/pkg/errors"
	"github.com/poshuk/captives-gateway/pkg/response"
)

type accountResolver interface {
	Me(ctx context.Context, session *models.Session) (*models.Account, error)
}

// ContextSessionKey is the gin context key storing the caller session.
const ContextSessionKey = "currentSession"

// Session builds the caller's upstream session from the incoming request:
// every cookie is forwarded as-is, the anti-forgery token comes from the
// X-CSRFToken header or the csrftoken cookie, and a search-session cookie
// is issued when the caller does not have one yet. The account stays
// unresolved here; RequireAccount does that where identity matters.
func Session(cfg config.SearchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := &models.Session{
			Cookies:   c.Request.Cookies(),
			CSRFToken: c.GetHeader("X-CSRFToken"),
		}
		if session.CSRFToken == "" {
			if cookie, err := c.Request.Cookie("csrftoken"); err == nil {
				session.CSRFToken = cookie.Value
			}
		}

		searchID, err := c.Cookie(cfg.CookieName)
		if err != nil || searchID == "" {
			searchID = uuid.NewString()
			c.SetCookie(cfg.CookieName, searchID, int(cfg.SessionTTL.Seconds()), "/", "", false, true)
		}
		session.SearchID = searchID

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RequireAccount resolves the account behind the session cookies and
// blocks anonymous callers. The resolved account is stored back on the
// session for downstream ownership checks.
func RequireAccount(sessions accountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		account, err := sessions.Me(c.Request.Context(), session)
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Status == http.StatusUnauthorized || appErr.Status == http.StatusForbidden {
				response.Error(c, appErrors.ErrUnauthorized)
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}
		session.Account = account
		c.Next()
	}
}

// SessionFromContext extracts the session placed by the Session middleware.
func SessionFromContext(c *gin.Context) *models.Session {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
