package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agencypulse/server/internal/models"
)

// ProfileKey is the gin context key the middleware stores the caller under.
const ProfileKey = "profile"

// RequireAuth rejects requests without a valid bearer token and attaches the
// caller's profile to the context. Unauthenticated callers get a redirect
// hint pointing at the login screen.
func RequireAuth(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": "/login",
			})
			return
		}

		profile, err := service.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "invalid or expired token",
				"redirect": "/login",
			})
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role does not match.
// Apply after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := CurrentProfile(c)
		if profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": "/login",
			})
			return
		}
		if profile.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// CurrentProfile returns the authenticated caller, or nil.
func CurrentProfile(c *gin.Context) *models.Profile {
	value, exists := c.Get(ProfileKey)
	if !exists {
		return nil
	}
	profile, ok := value.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
