package domain

import (
	"context"
	"time"
)

// EventType defines the type of client event
type EventType string

const (
	// Session events
	SessionAuthenticatedEvent EventType = "SESSION_AUTHENTICATED"
	SessionAnonymousEvent     EventType = "SESSION_ANONYMOUS"
	SessionExpiredEvent       EventType = "SESSION_EXPIRED"
	UserLoginFailureEvent     EventType = "USER_LOGIN_FAILED"
	UserRegisterFailureEvent  EventType = "USER_REGISTRATION_FAILED"
	UserLogoutEvent           EventType = "USER_LOGOUT"

	// Collection events
	CollectionRefreshedEvent      EventType = "COLLECTION_REFRESHED"
	CollectionRefreshFailureEvent EventType = "COLLECTION_REFRESH_FAILED"
	CollectionMutatedEvent        EventType = "COLLECTION_MUTATED"
	CollectionMutationFailedEvent EventType = "COLLECTION_MUTATION_FAILED"
	CartDrawerOpenedEvent         EventType = "CART_DRAWER_OPENED"

	// Checkout events
	OrderPlacedEvent       EventType = "ORDER_PLACED"
	OrderPlaceFailureEvent EventType = "ORDER_PLACE_FAILED"
)

// Event is something the presentation layer may want to react to:
// re-render a badge, show a toast, open the cart drawer.
type Event struct {
	Type      EventType              `json:"type"`
	Resource  string                 `json:"resource,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	ProductID string                 `json:"product_id,omitempty"`
	Count     int                    `json:"count,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// EventSink receives client events. Publish must not block on slow consumers.
type EventSink interface {
	Publish(ctx context.Context, event *Event)
}

// NewEvent creates a new event with common fields populated
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError sets error information on the event. The message is the
// user-facing reason.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.ErrorMsg = Reason(err)
	}
	return e
}

// WithUser sets the user id
func (e *Event) WithUser(user *UserProfile) *Event {
	if user != nil {
		e.UserID = user.ID
	}
	return e
}

// WithResource sets the resource name
func (e *Event) WithResource(resource string) *Event {
	e.Resource = resource
	return e
}

// WithProduct sets the product id
func (e *Event) WithProduct(productID string) *Event {
	e.ProductID = productID
	return e
}

// WithCount sets the item count
func (e *Event) WithCount(n int) *Event {
	e.Count = n
	return e
}

// WithMetadata adds metadata to the event
func (e *Event) WithMetadata(key string, value interface{}) *Event {
	e.Metadata[key] = value
	return e
}
