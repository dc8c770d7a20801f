package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/you/storefront/domain"
)

// MockTokenService implements domain.TokenService interface for testing.
// Default tokens have the form token|<user>|<role>|<session>.
type MockTokenService struct {
	GenerateAccessTokenFunc func(userID string, role domain.Role, sessionID string) (string, error)
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
	TTL                     time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{TTL: time.Hour}
}

// GenerateAccessToken generates an access token for the user
func (m *MockTokenService) GenerateAccessToken(userID string, role domain.Role, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role, sessionID)
	}
	return fmt.Sprintf("token|%s|%s|%s", userID, role, sessionID), nil
}

// ValidateAccessToken parses tokens produced by GenerateAccessToken
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "token" {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now().Unix()
	return &domain.TokenClaims{
		UserID:    parts[1],
		Role:      domain.Role(parts[2]),
		SessionID: parts[3],
		IssuedAt:  now,
		ExpiresAt: now + int64(m.TTL.Seconds()),
	}, nil
}

// AccessTTL returns the configured TTL
func (m *MockTokenService) AccessTTL() time.Duration {
	return m.TTL
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
