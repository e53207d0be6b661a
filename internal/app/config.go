package app

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	CatalogSourceBackend  = "backend"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Port             int
	Env              string
	DB               DBConfig
	Redis            RedisConfig
	Backend          BackendConfig
	Identity         IdentityConfig
	Stripe           StripeConfig
	SMTP             SMTPConfig
	AMQP             AMQPConfig
	Currency         string
	WorkflowTTL      time.Duration
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// BackendConfig selects where showtimes and bookings live. With the backend
// source they are read from the REST booking service at URL, with the postgres
// source straight from DB.
type BackendConfig struct {
	Source  string
	URL     string
	Timeout time.Duration
}

type IdentityConfig struct {
	LoginURL string
	Issuer   string
	Secret   string
}

type StripeConfig struct {
	SecretKey     string
	PaymentMethod string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type AMQPConfig struct {
	URL string
}

// LoadConfig parses args into a Config. A .env file in the working directory
// is loaded first and its variables, like the process environment, provide
// the flag defaults.
func LoadConfig(args []string) (Config, bool, error) {
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("cinex-booking", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", envStr("ENV", "dev"), "Environment (dev|staging|prod)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", envStr("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", envStr("REDIS_URL", "localhost:6379"), "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	fs.StringVar(&cfg.Backend.Source, "catalog-source", envStr("CATALOG_SOURCE", CatalogSourceBackend), "Showtime and booking source (backend|postgres)")
	fs.StringVar(&cfg.Backend.URL, "backend-url", envStr("BACKEND_URL", "http://localhost:8080"), "Booking service base URL")
	fs.DurationVar(&cfg.Backend.Timeout, "backend-timeout", envDuration("BACKEND_TIMEOUT", 10*time.Second), "Booking service request timeout")

	fs.StringVar(&cfg.Identity.LoginURL, "identity-login-url", envStr("IDENTITY_LOGIN_URL", "http://localhost:8080/auth/google"), "Identity provider sign-in page")
	fs.StringVar(&cfg.Identity.Issuer, "identity-issuer", envStr("IDENTITY_ISSUER", ""), "Expected issuer of identity tokens")
	fs.StringVar(&cfg.Identity.Secret, "identity-secret", envStr("IDENTITY_SECRET", ""), "HS256 secret of identity tokens")

	fs.StringVar(&cfg.Stripe.SecretKey, "stripe-key", envStr("STRIPE_KEY", ""), "Stripe secret key, payments are simulated when empty")
	fs.StringVar(&cfg.Stripe.PaymentMethod, "stripe-payment-method", envStr("STRIPE_PAYMENT_METHOD", "pm_card_visa"), "Stripe payment method charged for bookings")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", envStr("SMTP_HOST", ""), "SMTP host, confirmation mails are skipped when empty")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", envStr("SMTP_USERNAME", ""), "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", envStr("SMTP_PASSWORD", ""), "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", envStr("SMTP_SENDER", "CineX <no-reply@cinex.metinatakli.net>"), "SMTP sender")

	fs.StringVar(&cfg.AMQP.URL, "amqp-url", envStr("AMQP_URL", ""), "RabbitMQ URL, booking events are skipped when empty")

	fs.StringVar(&cfg.Currency, "currency", envStr("CURRENCY", "INR"), "ISO currency of seat prices")
	fs.DurationVar(&cfg.WorkflowTTL, "workflow-ttl", envDuration("WORKFLOW_TTL", 20*time.Minute), "Idle lifetime of a booking workflow")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envStr("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, false, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, false, err
	}

	return cfg, *displayVersion, nil
}

func (cfg Config) validate() error {
	switch cfg.Backend.Source {
	case CatalogSourceBackend:
		if cfg.Backend.URL == "" {
			return fmt.Errorf("backend-url is required with catalog source %q", cfg.Backend.Source)
		}
	case CatalogSourcePostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("db-dsn is required with catalog source %q", cfg.Backend.Source)
		}
	default:
		return fmt.Errorf("unknown catalog source %q", cfg.Backend.Source)
	}

	if cfg.Identity.Secret == "" {
		return fmt.Errorf("identity-secret is required")
	}

	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}

	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}

	return def
}
