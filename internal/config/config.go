package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	NotFoundModeNull = "null"
	NotFoundMode404  = "404"
)

type Config struct {
	Env   string `envconfig:"APP_ENV" default:"dev"`
	Port  int    `envconfig:"PORT" default:"5000"`
	Store string `envconfig:"STORE_DRIVER" default:"mongo"`

	MongoURI string `envconfig:"MONGODB_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDB  string `envconfig:"MONGODB_DB" default:"baby-care-store"`
	DBURL    string `envconfig:"DATABASE_URL"`

	JWTSecret string   `envconfig:"JWT_SECRET"`
	TokenTTL  TokenTTL `envconfig:"EXPIRES_IN" default:"1d"`

	ProductNotFoundMode string   `envconfig:"PRODUCT_NOT_FOUND_MODE" default:"null"`
	ProductsRequireAuth bool     `envconfig:"PRODUCTS_REQUIRE_AUTH" default:"false"`
	CORSOrigins         []string `envconfig:"CORS_ORIGINS" default:"https://baby-care-sotre-frontend.vercel.app,http://localhost:3000"`
	MaxBodyBytes        int64    `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AuthRateLimit  int           `envconfig:"AUTH_RATE_LIMIT" default:"20"`
	AuthRateWindow time.Duration `envconfig:"AUTH_RATE_WINDOW" default:"1m"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"storefront-api"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	var cfg Config

	err := envconfig.Process("", &cfg)

	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = buildDBURL()
	}

	err = cfg.validate()

	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store)
	}

	switch c.ProductNotFoundMode {
	case NotFoundModeNull, NotFoundMode404:
	default:
		return fmt.Errorf("unknown PRODUCT_NOT_FOUND_MODE %q", c.ProductNotFoundMode)
	}

	if c.JWTSecret == "" {
		if !c.IsLocal() {
			return errors.New("JWT_SECRET is required")
		}
	}

	return nil
}

// IsLocal reports whether the service runs in a developer or test environment.
func (c Config) IsLocal() bool {
	return c.Env == "dev" || c.Env == "test"
}

// Secret returns the signing secret, falling back to a fixed value for local runs.
func (c Config) Secret() string {
	if c.JWTSecret == "" && c.IsLocal() {
		return "local-dev-secret"
	}

	return c.JWTSecret
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "storefront")
	pass := getEnv("DB_PASSWORD", "storefront")
	name := getEnv("DB_NAME", "storefront")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// TokenTTL accepts "90m", "12h", "7d" or a bare number of seconds.
type TokenTTL time.Duration

func (t *TokenTTL) Decode(value string) error {
	d, err := ParseTokenTTL(value)

	if err != nil {
		return err
	}

	*t = TokenTTL(d)

	return nil
}

func (t TokenTTL) Duration() time.Duration {
	return time.Duration(t)
}

func ParseTokenTTL(raw string) (time.Duration, error) {
	v := strings.TrimSpace(raw)

	if v == "" {
		return 0, errors.New("empty token ttl")
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("token ttl must be positive: %q", raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)

		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid token ttl %q", raw)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(v)

	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid token ttl %q", raw)
	}

	return d, nil
}
