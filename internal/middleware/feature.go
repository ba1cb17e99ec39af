package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/edubatch-api/pkg/errors"
	"github.com/noah-isme/edubatch-api/pkg/response"
)

// FeatureGate rejects requests with FEATURE_DISABLED unless enabled is true.
func FeatureGate(enabled bool, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, feature+" is disabled"))
			c.Abort()
			return
		}
		c.Next()
	}
}
