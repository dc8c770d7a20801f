package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// CasbinMW guards routes with role policies
type CasbinMW struct {
	policies domain.PolicyService
	logger   *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService, logger *zap.Logger) *CasbinMW {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CasbinMW{policies: policies, logger: logger}
}

// Enforce checks the caller's role against the request path and method.
// It must run after AuthMW.Required.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Non authentifié"})
			return
		}

		allowed, err := mw.policies.CheckPermission(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			mw.logger.Error("policy check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Erreur d'autorisation"})
			return
		}
		if !allowed {
			mw.logger.Info("access denied",
				zap.String("user_id", c.GetString(ContextUserID)),
				zap.String("role", role),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Accès administrateur requis"})
			return
		}
		c.Next()
	}
}
