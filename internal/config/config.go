package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given
const DefaultPath = "config/config.yml"

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type TokenStoreConfig struct {
	Driver string `yaml:"driver"` // "file", "memory", "redis", "sql"
	Path   string `yaml:"path"`
	TTL    string `yaml:"ttl"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	AccessTTL string `yaml:"access_ttl"`
}

type StubConfig struct {
	Port       int       `yaml:"port"`
	GinMode    string    `yaml:"gin_mode"`
	JWT        JWTConfig `yaml:"jwt"`
	SessionTTL string    `yaml:"session_ttl"`
	CasbinPath string    `yaml:"casbin_model_path"`
	Seed       bool      `yaml:"seed"`
}

type ConfigFile struct {
	API        APIConfig        `yaml:"api"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Log        LogConfig        `yaml:"log"`
	Stub       StubConfig       `yaml:"stub"`
}

type Config struct {
	APIBaseURL      string
	APITimeout      time.Duration
	TokenDriver     string
	TokenPath       string
	TokenTTL        time.Duration
	DSN             string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LogLevel        string
	LogDevelopment  bool
	StubPort        string
	GinMode         string
	JWTSecret       string
	JWTIssuer       string
	AccessTTL       time.Duration
	SessionTTL      time.Duration
	CasbinModelPath string
	Seed            bool
}

func defaults() ConfigFile {
	return ConfigFile{
		API:        APIConfig{BaseURL: "http://localhost:8001/api", Timeout: "15s"},
		TokenStore: TokenStoreConfig{Driver: "file", TTL: "0s"},
		Database:   DatabaseConfig{DSN: "storefront.db"},
		Redis:      RedisConfig{Addr: "localhost:6379"},
		Log:        LogConfig{Level: "info"},
		Stub: StubConfig{
			Port:       8001,
			GinMode:    "release",
			JWT:        JWTConfig{Issuer: "storefront-stub", AccessTTL: "168h"},
			SessionTTL: "168h",
			Seed:       true,
		},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the YAML config at path (DefaultPath when empty), then applies
// .env and STOREFRONT_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path == "" {
		path = env("STOREFRONT_CONFIG", DefaultPath)
	}
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	timeout, err := time.ParseDuration(env("STOREFRONT_API_TIMEOUT", configFile.API.Timeout))
	if err != nil {
		return nil, fmt.Errorf("invalid API timeout: %w", err)
	}

	tokenTTL, err := time.ParseDuration(configFile.TokenStore.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token store TTL: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.Stub.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	sessTTL, err := time.ParseDuration(configFile.Stub.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}

	redisDB := configFile.Redis.DB
	if v := os.Getenv("STOREFRONT_REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STOREFRONT_REDIS_DB: %w", err)
		}
	}

	tokenPath := env("STOREFRONT_TOKEN_PATH", configFile.TokenStore.Path)
	if tokenPath == "" {
		tokenPath = defaultTokenPath()
	}

	return &Config{
		APIBaseURL:      env("STOREFRONT_API_URL", configFile.API.BaseURL),
		APITimeout:      timeout,
		TokenDriver:     env("STOREFRONT_TOKEN_STORE", configFile.TokenStore.Driver),
		TokenPath:       tokenPath,
		TokenTTL:        tokenTTL,
		DSN:             env("STOREFRONT_DSN", configFile.Database.DSN),
		RedisAddr:       env("STOREFRONT_REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:   env("STOREFRONT_REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:         redisDB,
		LogLevel:        env("STOREFRONT_LOG_LEVEL", configFile.Log.Level),
		LogDevelopment:  configFile.Log.Development,
		StubPort:        env("STOREFRONT_STUB_PORT", strconv.Itoa(configFile.Stub.Port)),
		GinMode:         env("GIN_MODE", configFile.Stub.GinMode),
		JWTSecret:       env("STOREFRONT_JWT_SECRET", configFile.Stub.JWT.Secret),
		JWTIssuer:       configFile.Stub.JWT.Issuer,
		AccessTTL:       accTTL,
		SessionTTL:      sessTTL,
		CasbinModelPath: configFile.Stub.CasbinPath,
		Seed:            configFile.Stub.Seed,
	}, nil
}

// ValidateStub checks the settings the reference backend cannot run without
func (c *Config) ValidateStub() error {
	if c.JWTSecret == "" {
		return errors.New("stub.jwt.secret (or STOREFRONT_JWT_SECRET) is required")
	}
	if c.DSN == "" {
		return errors.New("database.dsn is required")
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	config := defaults()

	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "storefront", "token.yml")
}
