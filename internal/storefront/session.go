package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/apiclient"
)

// SessionManager owns the auth state machine
// Unknown -> {Authenticated, Anonymous}, Authenticated -> Anonymous.
// Bootstrap, Register, Login and Logout run one at a time.
type SessionManager struct {
	api    API
	tokens domain.TokenStore
	events domain.EventSink
	logger *zap.Logger
	now    func() time.Time

	transitions *semaphore.Weighted

	mu           sync.RWMutex
	session      domain.Session
	token        string
	bootstrapped bool
}

// NewSessionManager creates a session manager in the Unknown state
func NewSessionManager(api API, tokens domain.TokenStore, events domain.EventSink, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		api:         api,
		tokens:      tokens,
		events:      events,
		logger:      logger,
		now:         time.Now,
		transitions: semaphore.NewWeighted(1),
	}
}

// Bootstrap resolves the initial state from the stored token. It runs once;
// later calls return the current snapshot. It never fails: any problem
// clears the store and leaves the session Anonymous.
func (m *SessionManager) Bootstrap(ctx context.Context) domain.Session {
	if err := m.transitions.Acquire(ctx, 1); err != nil {
		return m.Session()
	}
	defer m.transitions.Release(1)

	if m.bootstrapped {
		return m.Session()
	}
	m.bootstrapped = true

	token, ok := m.tokens.Read(ctx)
	if !ok || token == "" {
		m.logger.Debug("bootstrap: no stored token")
		m.becomeAnonymous(ctx, domain.SessionAnonymousEvent, "no_token")
		return m.Session()
	}

	if tokenExpired(token, m.now()) {
		m.logger.Info("bootstrap: stored token expired locally")
		m.becomeAnonymous(ctx, domain.SessionExpiredEvent, "token_expired")
		return m.Session()
	}

	var user domain.UserProfile
	if err := m.api.Get(ctx, "/auth/me", &user); err != nil {
		m.logger.Info("bootstrap: session check failed", zap.Error(err))
		reason := domain.SessionAnonymousEvent
		if isAuthError(err) {
			reason = domain.SessionExpiredEvent
		}
		m.becomeAnonymous(ctx, reason, domain.Reason(err))
		return m.Session()
	}

	m.mu.Lock()
	m.setAuthenticatedLocked(token, &user)
	m.mu.Unlock()
	m.publish(ctx, domain.NewEvent(domain.SessionAuthenticatedEvent).WithUser(&user).WithMetadata("via", "bootstrap"))
	return m.Session()
}

// Register creates an account and signs in with it
func (m *SessionManager) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRegister(req); err != nil {
		m.publish(ctx, domain.NewEvent(domain.UserRegisterFailureEvent).WithError(err))
		return nil, err
	}
	user, err := m.authenticate(ctx, "/auth/register", req, "register")
	if err != nil {
		m.publish(ctx, domain.NewEvent(domain.UserRegisterFailureEvent).WithError(err).WithMetadata("email", req.Email))
		return nil, err
	}
	return user, nil
}

// Login signs in with email and password
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := fmt.Errorf("%w: email and password are required", domain.ErrValidation)
		m.publish(ctx, domain.NewEvent(domain.UserLoginFailureEvent).WithError(err))
		return nil, err
	}
	user, err := m.authenticate(ctx, "/auth/login", domain.LoginRequest{Email: email, Password: password}, "login")
	if err != nil {
		m.publish(ctx, domain.NewEvent(domain.UserLoginFailureEvent).WithError(err).WithMetadata("email", email))
		return nil, err
	}
	return user, nil
}

// authenticate posts credentials and, on success, writes the token before
// publishing the Authenticated state. Credentials are sent without the
// bearer header so a stale token plays no part in the outcome.
func (m *SessionManager) authenticate(ctx context.Context, path string, body any, via string) (*domain.UserProfile, error) {
	if err := m.transitions.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", via, domain.ErrNetwork, err)
	}
	defer m.transitions.Release(1)

	var result domain.AuthResult
	if err := m.api.Post(ctx, path, body, &result, apiclient.Anonymous()); err != nil {
		m.logger.Info(via+" failed", zap.Error(err))
		return nil, err
	}
	if result.Token == "" {
		return nil, &domain.APIError{Op: "POST " + path, Detail: "response carried no token", Kind: domain.ErrServer}
	}

	user := result.UserProfile
	m.mu.Lock()
	if err := m.tokens.Write(ctx, result.Token); err != nil {
		m.mu.Unlock()
		m.logger.Error("could not persist token", zap.Error(err))
		return nil, fmt.Errorf("%s: could not persist token: %w", via, err)
	}
	m.setAuthenticatedLocked(result.Token, &user)
	m.bootstrapped = true
	m.mu.Unlock()

	m.logger.Info("signed in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)), zap.String("via", via))
	m.publish(ctx, domain.NewEvent(domain.SessionAuthenticatedEvent).WithUser(&user).WithMetadata("via", via))
	out := user
	return &out, nil
}

// Logout ends the session. The remote call is best effort; locally the
// token is always cleared and the state becomes Anonymous. Safe to repeat.
func (m *SessionManager) Logout(ctx context.Context) {
	// Logout runs to completion even for an already-cancelled context. The
	// remote call stays bounded by the client timeout.
	ctx = context.WithoutCancel(ctx)
	_ = m.transitions.Acquire(ctx, 1)
	defer m.transitions.Release(1)

	m.mu.RLock()
	prev := m.session
	m.mu.RUnlock()

	if _, ok := m.tokens.Read(ctx); ok || prev.IsAuthenticated() {
		if err := m.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
			m.logger.Debug("remote logout failed, ignoring", zap.Error(err))
		}
	}

	m.bootstrapped = true
	m.publish(ctx, domain.NewEvent(domain.UserLogoutEvent).WithUser(prev.User))
	m.becomeAnonymous(ctx, domain.SessionAnonymousEvent, "logout")
}

// HandleUnauthorized forces the session Anonymous when token, the token a
// request was rejected with, is still the current one. Stale rejections are
// ignored.
func (m *SessionManager) HandleUnauthorized(ctx context.Context, token string) {
	m.mu.Lock()
	if m.session.State != domain.SessionAuthenticated || m.token != token {
		m.mu.Unlock()
		return
	}
	user := m.session.User
	if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("could not clear token store", zap.Error(err))
	}
	m.setAnonymousLocked()
	m.mu.Unlock()

	m.logger.Info("session rejected by server, signed out", zap.String("user_id", user.ID))
	m.publish(ctx, domain.NewEvent(domain.SessionExpiredEvent).WithUser(user))
}

// becomeAnonymous clears the store and moves to Anonymous. eventType is
// published only when the state actually changes. The store is cleared
// even when ctx is already cancelled.
func (m *SessionManager) becomeAnonymous(ctx context.Context, eventType domain.EventType, reason string) {
	m.mu.Lock()
	if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("could not clear token store", zap.Error(err))
	}
	changed := m.session.State != domain.SessionAnonymous
	prev := m.session.User
	m.setAnonymousLocked()
	m.mu.Unlock()

	if changed {
		m.publish(ctx, domain.NewEvent(eventType).WithUser(prev).WithMetadata("reason", reason))
	}
}

func (m *SessionManager) setAuthenticatedLocked(token string, user *domain.UserProfile) {
	m.token = token
	m.session = domain.Session{State: domain.SessionAuthenticated, User: user}
}

func (m *SessionManager) setAnonymousLocked() {
	m.token = ""
	m.session = domain.Session{State: domain.SessionAnonymous}
}

func (m *SessionManager) publish(ctx context.Context, event *domain.Event) {
	if m.events != nil {
		m.events.Publish(ctx, event)
	}
}

// Session returns a snapshot of the current state
func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.session
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// State returns the current state
func (m *SessionManager) State() domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.State
}

// User returns the signed-in profile, nil when not authenticated
func (m *SessionManager) User() *domain.UserProfile {
	return m.Session().User
}

// IsAuthenticated reports whether the state is Authenticated
func (m *SessionManager) IsAuthenticated() bool {
	return m.State() == domain.SessionAuthenticated
}

// IsAdmin reports whether an admin is signed in
func (m *SessionManager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.IsAdmin()
}

func validateRegister(req domain.RegisterRequest) error {
	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens and JWTs without exp are left for the server to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

var (
	_ domain.SessionManager = (*SessionManager)(nil)
	_ Authenticator         = (*SessionManager)(nil)
)
