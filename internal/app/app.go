package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/you/storefront/internal/config"
	httpx "github.com/you/storefront/internal/http"
	"github.com/you/storefront/internal/http/handlers"
	"github.com/you/storefront/internal/http/middleware"
	"github.com/you/storefront/internal/infrastructure/auth"
	"github.com/you/storefront/internal/infrastructure/database"
	"github.com/you/storefront/internal/infrastructure/repositories"
	"github.com/you/storefront/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Stub is the reference storefront API, wired and ready to serve
type Stub struct {
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

// NewStub opens storage, migrates, seeds and builds the router
func NewStub(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stub, error) {
	if err := cfg.ValidateStub(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN, cfg.LogDevelopment)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	stub := &Stub{DB: gdb}
	if err := repositories.AutoMigrate(gdb); err != nil {
		stub.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	rdb, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		stub.Close()
		return nil, err
	}
	stub.Redis = rdb

	enforcer, err := auth.NewCasbinEnforcer(gdb, cfg.CasbinModelPath)
	if err != nil {
		stub.Close()
		return nil, err
	}

	// Infrastructure services
	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)

	// Repositories
	userRepo := repositories.NewUserRepository(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb, cfg.SessionTTL)
	productRepo := repositories.NewProductRepository(gdb)
	cartRepo := repositories.NewCartRepository(rdb, cfg.SessionTTL)
	wishlistRepo := repositories.NewWishlistRepository(gdb)
	orderRepo := repositories.NewOrderRepository(gdb)

	if cfg.Seed {
		if err := repositories.Seed(ctx, userRepo, productRepo, passwordSvc, logger.Named("seed")); err != nil {
			stub.Close()
			return nil, err
		}
	}

	// Domain services
	authSvc := services.NewAuthService(userRepo, sessionRepo, passwordSvc, tokenSvc, logger.Named("auth"))
	cartSvc := services.NewCartService(cartRepo, productRepo, logger.Named("cart"))
	wishlistSvc := services.NewWishlistService(wishlistRepo, productRepo)
	orderSvc := services.NewOrderService(orderRepo, productRepo, userRepo, cartRepo, logger.Named("orders"))
	policySvc := services.NewPolicyService(enforcer, logger.Named("policy"))

	h := httpx.Handlers{
		Auth:     handlers.NewAuthHandlers(authSvc, logger),
		Catalog:  handlers.NewCatalogHandlers(productRepo, repositories.Categories, logger),
		Cart:     handlers.NewCartHandlers(cartSvc, logger),
		Wishlist: handlers.NewWishlistHandlers(wishlistSvc, logger),
		Orders:   handlers.NewOrderHandlers(orderSvc, logger),
		Policies: handlers.NewPolicyHandlers(policySvc, logger),
	}
	stub.Router = httpx.BuildRouter(h,
		middleware.NewAuthMW(authSvc),
		middleware.NewCasbinMW(policySvc, logger),
		logger.Named("http"))
	return stub, nil
}

// Close releases the stub's connections
func (s *Stub) Close() error {
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	errs = append(errs, database.Close(s.DB))
	return errors.Join(errs...)
}

// RunStub serves the reference API until ctx is cancelled
func RunStub(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	stub, err := NewStub(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stub.Close()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.StubPort),
		Handler:           stub.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
