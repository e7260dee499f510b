package main

import "time"

// Ledger and push token backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	LedgerBackend    string `env:"LEDGER_BACKEND" envDefault:"memory"`
	PushTokenBackend string `env:"PUSH_TOKEN_BACKEND" envDefault:"memory"`

	PushProviderURL string        `env:"PUSH_PROVIDER_URL"`
	PushProviderKey string        `env:"PUSH_PROVIDER_KEY"`
	PushTimeout     time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`
	PushTokenMaxAge time.Duration `env:"PUSH_TOKEN_MAX_AGE" envDefault:"720h"`

	DispatchWorkers int           `env:"DISPATCH_WORKERS" envDefault:"16"`
	LiveBufferSize  int           `env:"LIVE_BUFFER_SIZE" envDefault:"16"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	InternalToken   string        `env:"INTERNAL_API_TOKEN"`

	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"30"`
	RateLimitPerSecond int    `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	RecipientNamesFile string `env:"RECIPIENT_NAMES_FILE"`
}
