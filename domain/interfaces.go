package domain

import (
	"context"
	"time"
)

// TokenSource is a live accessor to the current bearer token
type TokenSource interface {
	Read(ctx context.Context) (string, bool)
}

// TokenStore durably holds the single bearer token.
// Read never fails: unavailable storage reads as absent.
type TokenStore interface {
	TokenSource
	Write(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SessionManager owns the current identity
type SessionManager interface {
	Bootstrap(ctx context.Context) Session
	Register(ctx context.Context, req RegisterRequest) (*UserProfile, error)
	Login(ctx context.Context, email, password string) (*UserProfile, error)
	Logout(ctx context.Context)
	Session() Session
	IsAuthenticated() bool
	IsAdmin() bool
}

// CartManager is the presentation layer's view of the cart
type CartManager interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	Snapshot() Cart
	Count() int
	Loading() bool
}

// WishlistManager is the presentation layer's view of the wishlist
type WishlistManager interface {
	Fetch(ctx context.Context) error
	Add(ctx context.Context, productID string) error
	Remove(ctx context.Context, productID string) error
	Toggle(ctx context.Context, productID string) error
	Contains(productID string) bool
	Snapshot() Wishlist
	Loading() bool
}

// UserRepository defines account data access for the reference backend
type UserRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Count(ctx context.Context) (int64, error)
}

// SessionRepository defines server-side session storage
type SessionRepository interface {
	Create(ctx context.Context, session *AuthSession) error
	FindByID(ctx context.Context, sessionID string) (*AuthSession, error)
	// Touch marks the session used, restarting its idle window
	Touch(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

// ProductRepository defines catalog data access
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, p *Product) error
	AdjustStock(ctx context.Context, id string, delta int) error
	Count(ctx context.Context) (int64, error)
}

// CartRepository stores cart lines keyed by owner (user id or guest session)
type CartRepository interface {
	Items(ctx context.Context, owner string) ([]StoredCartItem, error)
	Save(ctx context.Context, owner string, items []StoredCartItem) error
	// Modify replaces the owner's lines with fn's result as one atomic
	// read-modify-write. An error from fn leaves the cart untouched.
	Modify(ctx context.Context, owner string, fn func([]StoredCartItem) ([]StoredCartItem, error)) error
	Delete(ctx context.Context, owner string) error
}

// WishlistRepository stores saved products per user
type WishlistRepository interface {
	Add(ctx context.Context, userID, productID string, at time.Time) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]WishlistLine, error)
}

// OrderRepository stores orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Stats(ctx context.Context) (total, pending, revenue int64, err error)
}

// AuthService defines authentication business logic of the reference backend
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// CartService defines server-side cart logic
type CartService interface {
	Get(ctx context.Context, owner string) (*Cart, error)
	Add(ctx context.Context, owner, productID string, quantity int) error
	Update(ctx context.Context, owner, productID string, quantity int) error
	Remove(ctx context.Context, owner, productID string) error
	Clear(ctx context.Context, owner string) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID string, role Role, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	AccessTTL() time.Duration
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
