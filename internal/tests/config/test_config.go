package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/you/storefront/internal/config"
)

// TestJWTSecret signs every token issued during E2E runs
const TestJWTSecret = "e2e-secret-not-for-production"

// LoadStubConfig returns a reference API configuration backed by a fresh
// SQLite file and the given Redis address. STOREFRONT_E2E_DSN points the run
// at another database, e.g. a local Postgres.
func LoadStubConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()

	// .env.test is optional
	_ = godotenv.Load(".env.test")

	dsn := os.Getenv("STOREFRONT_E2E_DSN")
	if dsn == "" {
		dsn = filepath.Join(t.TempDir(), "stub.db")
	}

	cfg := &config.Config{
		DSN:        dsn,
		RedisAddr:  redisAddr,
		GinMode:    "test",
		JWTSecret:  TestJWTSecret,
		JWTIssuer:  "storefront-e2e",
		AccessTTL:  time.Hour,
		SessionTTL: time.Hour,
		Seed:       true,
	}
	validateStubConfig(t, cfg)
	return cfg
}

// ClientConfig returns a client configuration for the API at baseURL
func ClientConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:  baseURL,
		APITimeout:  5 * time.Second,
		TokenDriver: "memory",
	}
}

func validateStubConfig(t *testing.T, cfg *config.Config) {
	t.Helper()

	if err := cfg.ValidateStub(); err != nil {
		t.Fatalf("invalid stub config: %v", err)
	}
	if cfg.RedisAddr == "" {
		t.Fatal("redis address must be set for E2E tests")
	}
}
