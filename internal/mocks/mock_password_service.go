package mocks

import (
	"sync"

	"github.com/you/storefront/domain"
)

// mockHashPrefix marks hashes produced by MockPasswordService
const mockHashPrefix = "hashed_"

// MockPasswordService implements domain.PasswordService interface for testing.
// It records the passwords it was asked to hash so tests can check a
// rejected registration never reached hashing.
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool

	mu     sync.Mutex
	hashed []string
}

// NewMockPasswordService creates a new MockPasswordService with default behaviors
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

// Hash generates a hash for the given password
func (m *MockPasswordService) Hash(password string) (string, error) {
	m.mu.Lock()
	m.hashed = append(m.hashed, password)
	m.mu.Unlock()

	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	// Default behavior: reversible marker hash
	return mockHashPrefix + password, nil
}

// Verify verifies a password against its hash
func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == mockHashPrefix+password
}

// Hashed returns the passwords passed to Hash, in call order
func (m *MockPasswordService) Hashed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.hashed...)
}

// Compile-time interface compliance verification
var _ domain.PasswordService = (*MockPasswordService)(nil)
