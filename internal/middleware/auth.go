package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
)

// RequireAuth checks if the profile is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		profileID := session.Get(constants.ContextKeyProfileID)

		if profileID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProfileID, profileID)
		c.Next()
	}
}

// GetProfileID retrieves the current profile ID from context
func GetProfileID(c *gin.Context) (uint64, bool) {
	profileID, exists := c.Get(constants.ContextKeyProfileID)
	if !exists {
		return 0, false
	}

	switch v := profileID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetProfile retrieves the profile loaded by RequireOrganization
func GetProfile(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(constants.ContextKeyProfile)
	if !exists {
		return nil, false
	}
	profile, ok := v.(*models.Profile)
	return profile, ok
}

// GetOrganizationID returns the organization of the profile loaded by RequireOrganization
func GetOrganizationID(c *gin.Context) (uint64, bool) {
	profile, ok := GetProfile(c)
	if !ok || profile.OrganizationID == nil {
		return 0, false
	}
	return *profile.OrganizationID, true
}
