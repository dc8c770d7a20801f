package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/storefront/domain"
)

// Context keys set by the auth middleware
const (
	ContextUser      = "user"
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextSessionID = "session_id"
)

// Authenticator resolves a bearer token to a live account
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.UserProfile, *domain.TokenClaims, error)
}

// AuthMW identifies the caller from the Authorization header
type AuthMW struct {
	auth Authenticator
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(auth Authenticator) *AuthMW {
	return &AuthMW{auth: auth}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// identify sets the caller on the context when the token resolves
func (mw *AuthMW) identify(c *gin.Context) bool {
	if _, ok := c.Get(ContextUser); ok {
		return true
	}
	token := bearerToken(c)
	if token == "" {
		return false
	}
	profile, claims, err := mw.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		return false
	}
	c.Set(ContextUser, profile)
	c.Set(ContextUserID, profile.ID)
	c.Set(ContextUserRole, string(profile.Role))
	if claims.SessionID != "" {
		c.Set(ContextSessionID, claims.SessionID)
	}
	return true
}

// Optional identifies the caller when it can and lets everyone through.
// A stale token makes the request anonymous, not rejected.
func (mw *AuthMW) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		mw.identify(c)
		c.Next()
	}
}

// Required rejects requests without a live token
func (mw *AuthMW) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mw.identify(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Non authentifié"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller set by the middleware, or nil
func CurrentUser(c *gin.Context) *domain.UserProfile {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.UserProfile)
	return user
}

// SessionID returns the caller's server session id, or ""
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
