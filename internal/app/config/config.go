package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Provider ProviderConfig

	SecretKey  string `env:"APP_SECRET_KEY,default=ChangeMe"`
	LogVerbose bool   `env:"APP_VERBOSE,default=0"`
	LogPretty  bool   `env:"APP_PRETTY,default=0"`
}

type ServerConfig struct {
	Listen       string        `env:"RUN_ADDRESS,default=localhost:8088"`
	TimeoutRead  time.Duration `env:"SERVER_TIMEOUT_READ,default=5s"`
	TimeoutWrite time.Duration `env:"SERVER_TIMEOUT_WRITE,default=30s"`
	TimeoutIdle  time.Duration `env:"SERVER_TIMEOUT_IDLE,default=1m"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_URI,required"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD,default="`
	DB       int    `env:"REDIS_DB,default=0"`
}

// GatewayConfig points at the payment gateway. Orders are created and
// fetched with key id / key secret basic auth.
type GatewayConfig struct {
	BaseURL   string `env:"RAZORPAY_API_URL,default=https://api.razorpay.com/v1"`
	KeyID     string `env:"RAZORPAY_KEY_ID,required"`
	KeySecret string `env:"RAZORPAY_KEY_SECRET,required"`
}

// ProviderConfig points at the image-generation provider.
type ProviderConfig struct {
	BaseURL string        `env:"IMAGE_API_URL,required"`
	APIKey  string        `env:"IMAGE_API_KEY,required"`
	Timeout time.Duration `env:"IMAGE_API_TIMEOUT,default=60s"`

	// GenerateRateLimit bounds generation requests per user per minute.
	GenerateRateLimit int `env:"GENERATE_RATE_LIMIT,default=10"`
}

// New config constructor
func New() Config {
	return Config{}
}

// Load config from environment and from .env file (if exists) and from flags
func (cfg *Config) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env load: %w", err)
	}

	if err := envdecode.StrictDecode(cfg); err != nil {
		return fmt.Errorf("env decode: %w", err)
	}

	pflag.StringVarP(&cfg.Server.Listen, "listen-addr", "a", cfg.Server.Listen, "Server address to listen on")
	pflag.StringVarP(&cfg.Database.DSN, "database-uri", "d", cfg.Database.DSN, "Database URI")
	pflag.StringVarP(&cfg.Gateway.BaseURL, "gateway-url", "g", cfg.Gateway.BaseURL, "Payment gateway base URL")
	pflag.StringVarP(&cfg.Provider.BaseURL, "provider-url", "i", cfg.Provider.BaseURL, "Image provider base URL")
	pflag.BoolVarP(&cfg.LogVerbose, "verbose", "v", cfg.LogVerbose, "Verbose output")
	pflag.BoolVarP(&cfg.LogPretty, "pretty", "p", cfg.LogPretty, "Pretty output")
	pflag.Parse()

	return nil
}
