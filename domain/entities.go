package domain

import "time"

// Role is the account role reported by the backend
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// UserProfile is the identity returned by the "who am I" call
type UserProfile struct {
	ID      string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Role    Role   `json:"role"`
	Picture string `json:"picture,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthResult is the flat {token, ...profile} payload of register and login
type AuthResult struct {
	Token string `json:"token"`
	UserProfile
}

// RegisterRequest represents registration input
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest represents login input
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionState is the auth state machine position
type SessionState int

const (
	SessionUnknown SessionState = iota
	SessionAnonymous
	SessionAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionAnonymous:
		return "anonymous"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time snapshot of the auth state.
// User is non-nil exactly when State is SessionAuthenticated.
type Session struct {
	State SessionState
	User  *UserProfile
}

// IsAuthenticated reports whether the snapshot is authenticated
func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated
}

// IsAdmin reports whether the snapshot is an authenticated admin
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.IsAdmin()
}

// CartLine is one product line in the cart
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
	Stock     int    `json:"stock,omitempty"`
}

// Key implements the collection line contract
func (l CartLine) Key() string { return l.ProductID }

// Cart is the server's view of the cart. Total is computed by the server.
type Cart struct {
	Items []CartLine `json:"items"`
	Total int64      `json:"total"`
}

// Count is the sum of quantities over all lines
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// WishlistLine is one saved product
type WishlistLine struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Image     string    `json:"image"`
	Stock     int       `json:"stock"`
	AddedAt   time.Time `json:"added_at"`
}

// Key implements the collection line contract
func (l WishlistLine) Key() string { return l.ProductID }

// Wishlist is the server's view of the wishlist
type Wishlist struct {
	Items []WishlistLine `json:"items"`
}

// Product represents a catalog product. Prices are in FCFA.
type Product struct {
	ProductID        string            `json:"product_id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"short_description"`
	Price            int64             `json:"price"`
	OriginalPrice    *int64            `json:"original_price,omitempty"`
	Category         string            `json:"category"`
	Subcategory      string            `json:"subcategory,omitempty"`
	Images           []string          `json:"images"`
	Stock            int               `json:"stock"`
	Featured         bool              `json:"featured"`
	IsNew            bool              `json:"is_new"`
	IsPromo          bool              `json:"is_promo"`
	Specs            map[string]string `json:"specs,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Category is a catalog category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// ProductQuery filters the product listing. Nil flags are not sent.
type ProductQuery struct {
	Category string
	Featured *bool
	IsNew    *bool
	IsPromo  *bool
	Limit    int
	Skip     int
}

// OrderItem is a frozen cart line inside an order
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// ShippingAddress is the delivery destination of an order
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Notes    string `json:"notes,omitempty"`
}

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	Items         []OrderItem     `json:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      int64           `json:"subtotal"`
	ShippingCost  int64           `json:"shipping_cost"`
	Total         int64           `json:"total"`
}

// Order is a placed order
type Order struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id,omitempty"`
	Items         []OrderItem     `json:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	OrderStatus   string          `json:"order_status"`
	Subtotal      int64           `json:"subtotal"`
	ShippingCost  int64           `json:"shipping_cost"`
	Total         int64           `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CheckoutRequest is what the presentation layer collects at checkout
type CheckoutRequest struct {
	Shipping      ShippingAddress
	PaymentMethod string
}

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalOrders   int64 `json:"total_orders"`
	PendingOrders int64 `json:"pending_orders"`
	TotalProducts int64 `json:"total_products"`
	TotalUsers    int64 `json:"total_users"`
	TotalRevenue  int64 `json:"total_revenue"`
}
