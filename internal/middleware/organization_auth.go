package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"gorm.io/gorm"
)

// RequireOrganization loads the authenticated profile and checks that it is an
// active member of an organization. Must run after RequireAuth.
func RequireOrganization(profiles repository.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID, exists := GetProfileID(c)
		if !exists {
			apierrors.AbortWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		profile, err := profiles.FindByID(c.Request.Context(), profileID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.AbortWithError(c, http.StatusUnauthorized,
					apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Profile not found"))
				return
			}
			apierrors.AbortWithError(c, http.StatusInternalServerError,
				apierrors.NewAPIError(apierrors.ErrCodeInternalError, "Failed to load profile"))
			return
		}

		if !profile.IsActive {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Profile is deactivated"))
			return
		}
		if profile.OrganizationID == nil {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeNoOrganization, "Join or create an organization first"))
			return
		}

		c.Set(constants.ContextKeyProfile, profile)
		c.Next()
	}
}

// RequireAdmin checks that the profile loaded by RequireOrganization is an admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := GetProfile(c)
		if !ok {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Organization access required"))
			return
		}

		if !profile.IsAdmin() {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "Only organization admins can perform this action"))
			return
		}

		c.Next()
	}
}
