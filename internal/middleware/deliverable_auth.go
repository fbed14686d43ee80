package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/constants"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
	"github.com/yukikurage/sponsor-deliverables-api/internal/models"
	"github.com/yukikurage/sponsor-deliverables-api/internal/services"
)

// RequireDeliverableAccess loads the deliverable named by the :id parameter.
// Deliverables of other organizations are reported as not found.
// Must run after RequireOrganization.
func RequireDeliverableAccess(deliverables *services.DeliverableService) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliverableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.AbortWithError(c, http.StatusBadRequest,
				apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, "Invalid deliverable ID"))
			return
		}

		orgID, ok := GetOrganizationID(c)
		if !ok {
			apierrors.AbortWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Organization access required"))
			return
		}

		d, err := deliverables.GetDeliverable(c.Request.Context(), orgID, deliverableID)
		if err != nil {
			if errors.Is(err, services.ErrDeliverableNotFound) {
				apierrors.AbortWithError(c, http.StatusNotFound,
					apierrors.NewAPIError(apierrors.ErrCodeNotFound, "Deliverable not found"))
				return
			}
			apierrors.AbortWithError(c, http.StatusInternalServerError,
				apierrors.NewAPIError(apierrors.ErrCodeInternalError, "Failed to load deliverable"))
			return
		}

		c.Set(constants.ContextKeyDeliverable, d)
		c.Next()
	}
}

// GetDeliverable retrieves the deliverable loaded by RequireDeliverableAccess
func GetDeliverable(c *gin.Context) (*models.Deliverable, bool) {
	v, exists := c.Get(constants.ContextKeyDeliverable)
	if !exists {
		return nil, false
	}
	d, ok := v.(*models.Deliverable)
	return d, ok
}
