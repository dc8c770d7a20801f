package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	logger *zap.Logger,
) *AuthServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		logger:      logger,
		now:         time.Now,
	}
}

// Register implements domain.AuthService. New accounts are customers and
// are signed in straight away.
func (s *AuthServiceImpl) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hashedPassword,
		Role:         domain.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", account.ID))
	return s.startSession(ctx, account)
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	account, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, account)
}

// startSession stores a server-side session and signs a token bound to it
func (s *AuthServiceImpl) startSession(ctx context.Context, account *domain.Account) (*domain.AuthResult, error) {
	now := s.now()
	session := &domain.AuthSession{
		ID:        "sess_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:    account.ID,
		ExpiresAt: now.Add(s.tokenSvc.AccessTTL()),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokenSvc.GenerateAccessToken(account.ID, account.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{Token: token, UserProfile: account.Profile()}, nil
}

// Logout implements domain.AuthService. Unknown sessions are not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := account.Profile()
	return &profile, nil
}

// Authenticate resolves a bearer token to its account. The token must be
// valid and its session still live; a resolved session counts as used.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.UserProfile, *domain.TokenClaims, error) {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, err
	}
	if claims.SessionID != "" {
		if _, err := s.sessionRepo.FindByID(ctx, claims.SessionID); err != nil {
			return nil, nil, err
		}
		if err := s.sessionRepo.Touch(ctx, claims.SessionID); err != nil {
			s.logger.Warn("failed to extend session", zap.String("session_id", claims.SessionID), zap.Error(err))
		}
	}
	profile, err := s.GetUserProfile(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return profile, claims, nil
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
