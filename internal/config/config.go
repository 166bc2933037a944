package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName string `envconfig:"MONGO_DB_NAME" default:"sareestore"`

	MongoMaxPoolSize            uint64        `envconfig:"MONGO_MAX_POOL_SIZE" default:"100"`
	MongoMinPoolSize            uint64        `envconfig:"MONGO_MIN_POOL_SIZE" default:"10"`
	MongoConnectTimeout         time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
	MongoServerSelectionTimeout time.Duration `envconfig:"MONGO_SERVER_SELECTION_TIMEOUT" default:"5s"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`

	// Empty disables event publishing.
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"storefront-events"`

	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID" default:""`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET" default:""`
	Currency          string `envconfig:"CURRENCY" default:"INR"`

	AdminToken string `envconfig:"ADMIN_TOKEN" default:""`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"60s"`
	CartTTL         time.Duration `envconfig:"CART_TTL" default:"168h"`
	OTPTTL          time.Duration `envconfig:"OTP_TTL" default:"5m"`

	MaxRequestBodySize int64 `envconfig:"MAX_REQUEST_BODY_SIZE" default:"1048576"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var ErrMissingPaymentKeys = errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")

// Validate checks what the HTTP server needs beyond Load. Payment verification is
// an HMAC over the key secret, so serving without it would accept forged callbacks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RazorpayKeyID) == "" || strings.TrimSpace(c.RazorpayKeySecret) == "" {
		return ErrMissingPaymentKeys
	}
	return nil
}

func (c *Config) Brokers() []string {
	if strings.TrimSpace(c.KafkaBrokers) == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "dev"
}
