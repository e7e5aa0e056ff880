package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/middleware"
	"github.com/kkampardi/educa-coursware/internal/models"
)

// claimsFromContext returns the authenticated user's claims, or nil
// when the route was reached without passing the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	if claims, ok := value.(*models.JWTClaims); ok {
		return claims
	}
	return nil
}
