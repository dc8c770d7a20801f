package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/mocks"
)

// fakeAuthenticator accepts "good-<role>" tokens
type fakeAuthenticator struct{}

func (fakeAuthenticator) Authenticate(_ context.Context, token string) (*domain.UserProfile, *domain.TokenClaims, error) {
	role, ok := strings.CutPrefix(token, "good-")
	if !ok {
		return nil, nil, domain.ErrTokenInvalid
	}
	return &domain.UserProfile{ID: "user_" + role, Role: domain.Role(role)},
		&domain.TokenClaims{UserID: "user_" + role, SessionID: "sess_" + role}, nil
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Any("/*path", handlers...)
	return r
}

func echoCaller(c *gin.Context) {
	user := CurrentUser(c)
	id := ""
	if user != nil {
		id = user.ID
	}
	c.JSON(http.StatusOK, gin.H{"user": id, "session": SessionID(c), "owner": CartOwnerOf(c)})
}

func TestAuthMW(t *testing.T) {
	mw := NewAuthMW(fakeAuthenticator{})

	tests := []struct {
		name           string
		required       bool
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "optional anonymous", header: "", expectedStatus: http.StatusOK, expectedBody: `"user":""`},
		{name: "optional bad token", header: "Bearer nope", expectedStatus: http.StatusOK, expectedBody: `"user":""`},
		{name: "optional good token", header: "Bearer good-customer", expectedStatus: http.StatusOK, expectedBody: `"user":"user_customer"`},
		{name: "required missing", required: true, expectedStatus: http.StatusUnauthorized, expectedBody: "Non authentifié"},
		{name: "required wrong scheme", required: true, header: "Basic good-customer", expectedStatus: http.StatusUnauthorized},
		{name: "required good", required: true, header: "bearer good-admin", expectedStatus: http.StatusOK, expectedBody: `"session":"sess_admin"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := mw.Optional()
			if tt.required {
				guard = mw.Required()
			}
			r := newTestRouter(guard, echoCaller)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestCasbinMW(t *testing.T) {
	auth := NewAuthMW(fakeAuthenticator{})
	cb := NewCasbinMW(mocks.NewMockPolicyService(), nil)
	r := newTestRouter(auth.Required(), cb.Enforce(), echoCaller)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "admin", token: "good-admin", expectedStatus: http.StatusOK},
		{name: "customer", token: "good-customer", expectedStatus: http.StatusForbidden},
		{name: "anonymous", token: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCartOwner(t *testing.T) {
	auth := NewAuthMW(fakeAuthenticator{})
	r := newTestRouter(auth.Optional(), CartOwner(), echoCaller)

	tests := []struct {
		name          string
		method        string
		token         string
		session       string
		expectedOwner string
		issued        bool
	}{
		{name: "user wins over session", method: http.MethodPost, token: "good-customer", session: "cart_abc", expectedOwner: "user_customer"},
		{name: "guest session echoed", method: http.MethodGet, session: "cart_abc", expectedOwner: "cart_abc"},
		{name: "guest read without session", method: http.MethodGet, expectedOwner: ""},
		{name: "guest write gets a session", method: http.MethodPost, issued: true},
		{name: "foreign id ignored", method: http.MethodPost, session: "user_customer", issued: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/cart", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.session != "" {
				req.Header.Set(CartSessionHeader, tt.session)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			if tt.issued {
				sid := w.Header().Get(CartSessionHeader)
				assert.Regexp(t, `^cart_[0-9a-f]{12}$`, sid)
				assert.Contains(t, w.Body.String(), `"owner":"`+sid+`"`)
				return
			}
			assert.Contains(t, w.Body.String(), `"owner":"`+tt.expectedOwner+`"`)
		})
	}
}
