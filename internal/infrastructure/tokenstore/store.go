// Package tokenstore persists the bearer token across process restarts, the
// way browser storage does across page reloads. Values are scoped to the API
// origin so one machine can hold sessions for several storefronts.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// Keys the client persists per origin
const (
	Key            = "auth_token"
	CartSessionKey = "cart_session"
)

// ErrNotStored is returned by backends when the key has no value
var ErrNotStored = errors.New("tokenstore: no value stored")

// Backend is a raw origin-scoped key-value storage
type Backend interface {
	Get(ctx context.Context, origin, key string) (string, error)
	Set(ctx context.Context, origin, key, value string) error
	Delete(ctx context.Context, origin, key string) error
}

// Store implements domain.TokenStore on top of a Backend
type Store struct {
	backend Backend
	origin  string
	logger  *zap.Logger
}

// New creates a token store for the given API origin
func New(backend Backend, origin string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, origin: origin, logger: logger}
}

// Read implements domain.TokenStore. Backend failures read as "no token".
func (s *Store) Read(ctx context.Context) (string, bool) {
	token, err := s.backend.Get(ctx, s.origin, Key)
	if err != nil {
		if !errors.Is(err, ErrNotStored) {
			s.logger.Warn("token store unavailable, treating as logged out",
				zap.String("origin", s.origin), zap.Error(err))
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// Write implements domain.TokenStore. Writing an empty token clears the store.
func (s *Store) Write(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.backend.Set(ctx, s.origin, Key, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Clear implements domain.TokenStore
func (s *Store) Clear(ctx context.Context) error {
	err := s.backend.Delete(ctx, s.origin, Key)
	if err != nil && !errors.Is(err, ErrNotStored) {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// CartSession returns the persisted guest cart id, "" when none
func (s *Store) CartSession(ctx context.Context) string {
	id, err := s.backend.Get(ctx, s.origin, CartSessionKey)
	if err != nil {
		return ""
	}
	return id
}

// SaveCartSession persists the guest cart id. An empty id deletes it.
func (s *Store) SaveCartSession(ctx context.Context, id string) error {
	var err error
	if id == "" {
		err = s.backend.Delete(ctx, s.origin, CartSessionKey)
	} else {
		err = s.backend.Set(ctx, s.origin, CartSessionKey, id)
	}
	if err != nil && !errors.Is(err, ErrNotStored) {
		return fmt.Errorf("failed to persist cart session: %w", err)
	}
	return nil
}

// Origin returns scheme://host[:port] of baseURL
func Origin(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

var _ domain.TokenStore = (*Store)(nil)
