package domain

import "time"

// Account is a stored user record on the reference backend
type Account struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Picture      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile projects the account onto the public profile shape
func (a *Account) Profile() UserProfile {
	return UserProfile{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		Phone:   a.Phone,
		Role:    a.Role,
		Picture: a.Picture,
	}
}

// AuthSession represents a server-side login session
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// StoredCartItem is a cart line as persisted by the backend, before product enrichment
type StoredCartItem struct {
	ProductID string
	Quantity  int
}
