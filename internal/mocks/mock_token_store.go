package mocks

import (
	"context"
	"sync"

	"github.com/you/storefront/domain"
)

// MockTokenStore implements domain.TokenStore with an in-memory value.
// The Func fields override the default behavior.
type MockTokenStore struct {
	ReadFunc  func(ctx context.Context) (string, bool)
	WriteFunc func(ctx context.Context, token string) error
	ClearFunc func(ctx context.Context) error

	mu         sync.Mutex
	token      string
	present    bool
	WriteCalls int
	ClearCalls int
}

// NewMockTokenStore creates an empty MockTokenStore
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{}
}

// NewMockTokenStoreWith creates a MockTokenStore holding token
func NewMockTokenStoreWith(token string) *MockTokenStore {
	return &MockTokenStore{token: token, present: true}
}

// Read returns the stored token
func (m *MockTokenStore) Read(ctx context.Context) (string, bool) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.present
}

// Write stores token
func (m *MockTokenStore) Write(ctx context.Context, token string) error {
	m.mu.Lock()
	m.WriteCalls++
	m.mu.Unlock()
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.present = token, token != ""
	return nil
}

// Clear removes the token
func (m *MockTokenStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.ClearCalls++
	m.mu.Unlock()
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.present = "", false
	return nil
}

// Compile-time interface compliance verification
var _ domain.TokenStore = (*MockTokenStore)(nil)
