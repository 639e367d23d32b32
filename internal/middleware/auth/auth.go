// Package auth provides middleware guarding the admin control surface.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/galawall-api/internal/admin"
	"github.com/gravadigital/galawall-api/internal/response"
)

// AdminRequired rejects requests without a valid admin bearer token.
func AdminRequired(svc *admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			response.UnauthorizedError(c, "admin token required")
			c.Abort()
			return
		}

		if err := svc.VerifyToken(token); err != nil {
			response.UnauthorizedError(c, "invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
