package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartSessionHeader carries the guest cart id
const CartSessionHeader = "X-Cart-Session"

// ContextCartOwner is the key of the resolved cart owner
const ContextCartOwner = "cart_owner"

// Guest ids never collide with user ids, so a guest cannot address a
// user's cart by sending its id.
const cartSessionPrefix = "cart_"

// NewCartSessionID returns a fresh guest cart id
func NewCartSessionID() string {
	return cartSessionPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// CartOwner resolves whose cart a request addresses: the signed-in user, or
// the guest session from X-Cart-Session. Guests without a session get one
// on write requests, echoed in the response header. Run after AuthMW.Optional.
func CartOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.Set(ContextCartOwner, user.ID)
			c.Next()
			return
		}

		sid := strings.TrimSpace(c.GetHeader(CartSessionHeader))
		if !strings.HasPrefix(sid, cartSessionPrefix) {
			sid = ""
		}
		if sid == "" && c.Request.Method != http.MethodGet {
			sid = NewCartSessionID()
		}
		if sid != "" {
			c.Header(CartSessionHeader, sid)
		}
		c.Set(ContextCartOwner, sid)
		c.Next()
	}
}

// CartOwnerOf returns the owner resolved by CartOwner; "" means no cart
func CartOwnerOf(c *gin.Context) string {
	return c.GetString(ContextCartOwner)
}
