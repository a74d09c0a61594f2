package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vukanihub/vukani-backend/internal/app/model"
	"github.com/vukanihub/vukani-backend/internal/errors"
	"github.com/vukanihub/vukani-backend/pkg/redis"
	"github.com/vukanihub/vukani-backend/pkg/util"
)

// Context keys for the authenticated identity.
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate requires a valid, non-revoked access token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := extractBearerToken(c)
		if !ok {
			log.Warn("Missing or malformed authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "session has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authentication token")
			}
			c.Abort()
			return
		}

		// Logged-out tokens stay valid cryptographically until expiry; the
		// blacklist is what actually ends the session.
		blacklisted, err := redis.IsTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			log.Warn("Token blacklist check failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if blacklisted {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "session has been revoked")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, model.UserRole(claims.Role))

		c.Next()
	}
}

// OptionalAuthenticate sets the identity when a valid token is present and
// continues as a guest otherwise. Search and detail pages use this to
// personalize results without requiring login.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			c.Next()
			return
		}

		if blacklisted, err := redis.IsTokenBlacklisted(c.Request.Context(), token); err == nil && blacklisted {
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, model.UserRole(claims.Role))

		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(UserRoleKey)
		userRole, ok := role.(model.UserRole)
		if !exists || !ok || userRole != model.RoleAdmin {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user ID, or nil for guests.
func CurrentUserID(c *gin.Context) *uint {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(uint); ok {
			return &userID
		}
	}
	return nil
}

// IsAdmin reports whether the current identity carries the admin role.
func IsAdmin(c *gin.Context) bool {
	if role, exists := c.Get(UserRoleKey); exists {
		userRole, ok := role.(model.UserRole)
		return ok && userRole == model.RoleAdmin
	}
	return false
}
