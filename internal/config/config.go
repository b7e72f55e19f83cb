package config

import (
	"os"
	"time"
)

type Config struct {
	ServiceName string
	Env         string

	ServerPort int

	DatabaseURL string
	DBDriver    string

	JWTSecret []byte

	LogLevel string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	RedisURL    string
	TopCacheTTL time.Duration

	UploadDir string

	LoginRatePerSec int
	LoginRateBurst  int

	// TrustProxy reads the client IP from X-Forwarded-For set by a proxy on a
	// private network. Otherwise the socket address is used.
	TrustProxy bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		Env:         EnvDefault("APP_ENV", "development"),

		ServerPort: EnvIntDefault("SERVER_PORT", 5000),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    EnvDefault("DB_DRIVER", "pgx"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		RedisURL:    os.Getenv("REDIS_URL"),
		TopCacheTTL: time.Duration(EnvIntDefault("TOP_CACHE_TTL_SECONDS", 60)) * time.Second,

		UploadDir: EnvDefault("UPLOAD_DIR", "uploads"),

		LoginRatePerSec: EnvIntDefault("LOGIN_RATE_PER_SEC", 5),
		LoginRateBurst:  EnvIntDefault("LOGIN_RATE_BURST", 10),

		TrustProxy: EnvDefault("TRUST_PROXY", "false") == "true",
	}
}

// Production reports whether error stacks must be hidden.
func (c Config) Production() bool {
	return c.Env == "production"
}
