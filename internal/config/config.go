package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName          = "Raksha"
	defaultAppEnv           = "development"
	defaultPort             = "8080"
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultDevJWTSecret     = "raksha-dev-secret"
	defaultShutdownDelay    = 10 * time.Second
	defaultIdempotencyTTL   = 24 * time.Hour
	defaultAccessTokenTTL   = 24 * time.Hour
	defaultOTPExpiry        = 5 * time.Minute
	defaultOTPSweepInterval = time.Minute
	defaultLoginRateLimit   = 5
	defaultOTPRateLimit     = 3
	defaultIDSentinel       = "123456789012"
	defaultIDPassRate       = 0.7
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	AccessTokenTTL time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	OTPExpiry        time.Duration
	OTPSingleUse     bool
	OTPSweepInterval time.Duration

	// Requests per minute; zero disables the limiter.
	LoginRateLimit int
	OTPRateLimit   int

	IDVerifySentinel string
	IDVerifyPassRate float64
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		IDVerifySentinel: getEnv("IDVERIFY_SENTINEL", defaultIDSentinel),
	}

	var err error
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", defaultAccessTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPExpiry, err = getDuration("OTP_EXPIRY", defaultOTPExpiry); err != nil {
		return Config{}, err
	}
	if cfg.OTPSweepInterval, err = getDuration("OTP_SWEEP_INTERVAL", defaultOTPSweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.OTPSingleUse, err = getBool("OTP_SINGLE_USE", false); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimit, err = getInt("LOGIN_RATE_LIMIT", defaultLoginRateLimit); err != nil {
		return Config{}, err
	}
	if cfg.OTPRateLimit, err = getInt("OTP_RATE_LIMIT", defaultOTPRateLimit); err != nil {
		return Config{}, err
	}

	cfg.IDVerifyPassRate = defaultIDPassRate
	if v := os.Getenv("IDVERIFY_PASS_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid IDVERIFY_PASS_RATE: %w", err)
		}
		if rate < 0 || rate > 1 {
			return Config{}, fmt.Errorf("IDVERIFY_PASS_RATE must be within [0,1]")
		}
		cfg.IDVerifyPassRate = rate
	}

	if cfg.OTPExpiry <= 0 {
		return Config{}, fmt.Errorf("OTP_EXPIRY must be positive")
	}

	if cfg.IsDev() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = defaultDevJWTSecret
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local environment where
// Postgres and Redis may be absent.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts either KEY_SECONDS (integer) or KEY (Go duration).
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
