package mocks

import (
	"context"

	"github.com/you/storefront/domain"
)

// MockSessionRepository implements domain.SessionRepository interface for testing
type MockSessionRepository struct {
	CreateFunc   func(ctx context.Context, session *domain.AuthSession) error
	FindByIDFunc func(ctx context.Context, sessionID string) (*domain.AuthSession, error)
	TouchFunc    func(ctx context.Context, sessionID string) error
	DeleteFunc   func(ctx context.Context, sessionID string) error

	// Touched records every session id passed to Touch
	Touched []string
}

// NewMockSessionRepository creates a new MockSessionRepository with default behaviors
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Create creates a new session
func (m *MockSessionRepository) Create(ctx context.Context, session *domain.AuthSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a session by ID
func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	// Default behavior: not found
	return nil, domain.ErrSessionNotFound
}

// Touch restarts a session's idle window
func (m *MockSessionRepository) Touch(ctx context.Context, sessionID string) error {
	m.Touched = append(m.Touched, sessionID)
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// Delete deletes a session by ID
func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.SessionRepository = (*MockSessionRepository)(nil)
