package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "tiffin"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Shopify   ShopifyConfig
	Admin     AdminConfig
	Multipass MultipassConfig
	Checkout  CheckoutConfig
	Uploads   UploadsConfig
	Catalog   CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Shopify.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIFFIN_APP_ENV" required:"true"`
	Port         string `envconfig:"TIFFIN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TIFFIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIFFIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"TIFFIN_REDIS_URL"`
	Address      string        `envconfig:"TIFFIN_REDIS_ADDR"`
	Password     string        `envconfig:"TIFFIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIFFIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIFFIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIFFIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIFFIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIFFIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIFFIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ShopifyConfig covers the public storefront API surface.
type ShopifyConfig struct {
	Domain          string `envconfig:"TIFFIN_SHOPIFY_DOMAIN" required:"true"`
	APIVersion      string `envconfig:"TIFFIN_SHOPIFY_API_VERSION" default:"2024-07"`
	StorefrontToken string `envconfig:"TIFFIN_SHOPIFY_STOREFRONT_TOKEN" required:"true"`
}

// StorefrontURL returns the GraphQL endpoint for the storefront API.
func (s ShopifyConfig) StorefrontURL() string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", s.Domain, s.APIVersion)
}

func (s ShopifyConfig) validate() error {
	if strings.Contains(s.Domain, "/") {
		return fmt.Errorf("shopify domain must be a bare host, got %q", s.Domain)
	}
	return nil
}

// AdminConfig covers the separately-credentialed admin API surface.
type AdminConfig struct {
	URL         string `envconfig:"TIFFIN_SHOPIFY_ADMIN_URL" required:"true"`
	AccessToken string `envconfig:"TIFFIN_SHOPIFY_ADMIN_TOKEN" required:"true"`
}

type MultipassConfig struct {
	Secret string `envconfig:"TIFFIN_MULTIPASS_SECRET" required:"true"`
}

type CheckoutConfig struct {
	MainProductID string `envconfig:"TIFFIN_CHECKOUT_MAIN_PRODUCT_ID" required:"true"`
	Discount      string `envconfig:"TIFFIN_CHECKOUT_DISCOUNT" default:"10"`
}

type CatalogConfig struct {
	SnapshotTTL time.Duration `envconfig:"TIFFIN_CATALOG_SNAPSHOT_TTL" default:"24h"`
}

type UploadsConfig struct {
	PollInterval time.Duration `envconfig:"TIFFIN_UPLOADS_POLL_INTERVAL" default:"3s"`
	MaxAttempts  int           `envconfig:"TIFFIN_UPLOADS_MAX_ATTEMPTS" default:"10"`
	MaxUploadMB  int           `envconfig:"TIFFIN_MAX_UPLOAD_MB" default:"20"`
}
