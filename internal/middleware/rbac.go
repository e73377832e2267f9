package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edufy-app/roster-api/internal/models"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
	"github.com/edufy-app/roster-api/pkg/response"
)

// Self grants access when the :id route parameter matches the session's
// own user id, in addition to any explicitly allowed roles.
const Self = "SELF"

// RBAC enforces role-based access control for routes. Must run after the
// Session middleware.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		allowSelf := false
		allowedRoles := make(map[models.Role]struct{})
		for _, a := range allowed {
			if a == Self {
				allowSelf = true
				continue
			}
			allowedRoles[models.Role(a)] = struct{}{}
		}

		if _, ok := allowedRoles[session.Role]; ok {
			c.Next()
			return
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == session.ID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
