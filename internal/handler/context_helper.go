package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/poshuk/captives-gateway/internal/middleware"
	"github.com/poshuk/captives-gateway/internal/models"
)

// sessionFrom returns the caller session installed by the session
// middleware, falling back to an empty session so handlers never deal
// with nil.
func sessionFrom(c *gin.Context) *models.Session {
	if session := middleware.SessionFromContext(c); session != nil {
		return session
	}
	return &models.Session{}
}
