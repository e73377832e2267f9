package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edufy-app/roster-api/internal/models"
	"github.com/edufy-app/roster-api/internal/service"
	appErrors "github.com/edufy-app/roster-api/pkg/errors"
	"github.com/edufy-app/roster-api/pkg/response"
)

// Context keys for the authenticated session and its raw token.
const (
	ContextSessionKey = "currentSession"
	ContextTokenKey   = "sessionToken"
)

// Session protects routes by requiring a valid, still-live session token.
func Session(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		session, err := authService.CurrentSession(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// SessionFrom returns the session stored by the middleware, if any.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}

// TokenFrom returns the raw session token stored by the middleware.
func TokenFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextTokenKey); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}
