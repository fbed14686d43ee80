package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/sponsor-deliverables-api/internal/errors"
)

// RequireCronSecret checks the "Authorization: Bearer <secret>" header of scheduler
// calls. An empty secret rejects every request.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if secret == "" || !found || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			apierrors.AbortWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Unauthorized"))
			return
		}
		c.Next()
	}
}
