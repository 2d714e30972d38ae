package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/middleware"
	"github.com/devmatch/rotation-api/internal/models"
)

// claimsFromContext returns the authenticated user's claims, or nil
// when the request skipped the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := c.Value(middleware.ContextUserKey).(*models.JWTClaims)
	return claims
}
