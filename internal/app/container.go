package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/apiclient"
	"github.com/you/storefront/internal/config"
	"github.com/you/storefront/internal/infrastructure/database"
	"github.com/you/storefront/internal/infrastructure/notifications"
	"github.com/you/storefront/internal/infrastructure/tokenstore"
	"github.com/you/storefront/internal/storefront"
)

// Container holds the client-side dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Tokens      *tokenstore.Store
	API         *apiclient.Client
	Bus         *notifications.Bus

	// Managers
	Session  *storefront.SessionManager
	Cart     *storefront.Cart
	Wishlist *storefront.Wishlist
	Catalog  *storefront.Catalog
	Checkout *storefront.Checkout
	Admin    *storefront.Admin

	unsubscribe func()
	closed      atomic.Bool
}

// Option adjusts a Container before its managers are built
type Option func(*containerOptions)

type containerOptions struct {
	backend tokenstore.Backend
	sinks   []domain.EventSink
	api     []apiclient.Option
}

// WithBackend replaces the token store backend chosen by config
func WithBackend(b tokenstore.Backend) Option {
	return func(o *containerOptions) { o.backend = b }
}

// WithSink adds an event sink next to the log and the bus
func WithSink(s domain.EventSink) Option {
	return func(o *containerOptions) { o.sinks = append(o.sinks, s) }
}

// WithAPIOptions passes options to the HTTP facade
func WithAPIOptions(opts ...apiclient.Option) Option {
	return func(o *containerOptions) { o.api = append(o.api, opts...) }
}

// NewContainer creates and wires all client dependencies. Nothing talks to
// the API until Start.
func NewContainer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initTokenStore(o.backend); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initAPI(o.api); err != nil {
		c.Close()
		return nil, err
	}
	c.initManagers(o.sinks)
	return c, nil
}

func (c *Container) initTokenStore(backend tokenstore.Backend) error {
	origin, err := tokenstore.Origin(c.Config.APIBaseURL)
	if err != nil {
		return err
	}

	if backend == nil {
		switch c.Config.TokenDriver {
		case "", "file":
			backend = tokenstore.NewFileBackend(c.Config.TokenPath)
		case "memory":
			backend = tokenstore.NewMemoryBackend()
		case "redis":
			client, err := database.OpenRedis(context.Background(), c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
			if err != nil {
				return err
			}
			c.RedisClient = client
			backend = tokenstore.NewRedisBackend(c.RedisClient, c.Config.TokenTTL)
		case "sql":
			db, err := database.Open(c.Config.DSN, false)
			if err != nil {
				return fmt.Errorf("failed to open token database: %w", err)
			}
			c.DB = db
			sqlBackend, err := tokenstore.NewSQLBackend(db)
			if err != nil {
				return err
			}
			backend = sqlBackend
		default:
			return fmt.Errorf("unknown token store driver %q", c.Config.TokenDriver)
		}
	}

	c.Tokens = tokenstore.New(backend, origin, c.Logger.Named("tokenstore"))
	return nil
}

func (c *Container) initAPI(extra []apiclient.Option) error {
	opts := append([]apiclient.Option{
		apiclient.WithTimeout(c.Config.APITimeout),
		apiclient.WithLogger(c.Logger.Named("api")),
	}, extra...)
	client, err := apiclient.New(c.Config.APIBaseURL, c.Tokens, opts...)
	if err != nil {
		return err
	}
	c.API = client
	return nil
}

func (c *Container) initManagers(sinks []domain.EventSink) {
	c.Bus = notifications.NewBus(c.Logger.Named("bus"))
	events := append(notifications.Multi{notifications.NewLogSink(c.Logger.Named("events")), c.Bus}, sinks...)

	c.Session = storefront.NewSessionManager(c.API, c.Tokens, events, c.Logger.Named("session"))
	c.Cart = storefront.NewCart(c.API, c.Session, events, c.Logger.Named("cart"))
	c.Wishlist = storefront.NewWishlist(c.API, c.Session, events, c.Logger.Named("wishlist"))
	c.Catalog = storefront.NewCatalog(c.API)
	c.Checkout = storefront.NewCheckout(c.API, c.Cart, events, c.Logger.Named("checkout"))
	c.Admin = storefront.NewAdmin(c.API, c.Session)

	// A 401 on a request that carried the current token ends the session
	c.API.OnUnauthorized(c.Session.HandleUnauthorized)
}

// Start restores the guest cart id, bootstraps the session from the token
// store and loads the cart and wishlist once. Later session changes refetch
// both. A failed initial load is logged; the collections stay empty.
func (c *Container) Start(ctx context.Context) domain.Session {
	if sid := c.Tokens.CartSession(ctx); sid != "" {
		c.API.SetCartSession(sid)
	}
	session := c.Session.Bootstrap(ctx)

	if c.unsubscribe == nil {
		c.unsubscribe = c.Bus.Subscribe(c.onSessionChange,
			domain.SessionAuthenticatedEvent,
			domain.SessionAnonymousEvent,
			domain.SessionExpiredEvent,
		)
	}
	if err := c.Refresh(ctx); err != nil {
		c.Logger.Warn("initial load failed", zap.Error(err))
	}
	return session
}

// onSessionChange refetches both collections. Leaving a session also drops
// the guest cart id so the next guest starts from an empty cart.
func (c *Container) onSessionChange(ctx context.Context, event domain.Event) {
	if event.Type != domain.SessionAuthenticatedEvent {
		c.API.ResetCartSession()
	}
	if err := c.Refresh(ctx); err != nil {
		c.Logger.Debug("refresh after session change failed",
			zap.String("event", string(event.Type)), zap.Error(err))
	}
}

// Refresh fetches the cart and the wishlist in parallel
func (c *Container) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Cart.Fetch(ctx) })
	g.Go(func() error { return c.Wishlist.Fetch(ctx) })
	return g.Wait()
}

// Close persists the guest cart id, stops the managers and releases
// connections. Safe on a partially built container.
func (c *Container) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.Tokens != nil && c.API != nil {
		if err := c.Tokens.SaveCartSession(context.Background(), c.API.CartSession()); err != nil {
			c.Logger.Warn("could not persist cart session", zap.Error(err))
		}
	}
	// Collections first: it cancels any session-change refresh in flight,
	// so unsubscribing does not wait on it.
	if c.Cart != nil {
		c.Cart.Close()
	}
	if c.Wishlist != nil {
		c.Wishlist.Close()
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.Bus != nil {
		c.Bus.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	return database.Close(c.DB)
}
