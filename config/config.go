package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	Port string `validate:"required,numeric"`

	StorageDriver        string        `validate:"oneof=postgres memory"`
	DatabaseURL          string        `validate:"required_if=StorageDriver postgres"`
	DBMaxConns           int32         `validate:"gt=0"`
	DBMinConns           int32         `validate:"gte=0,ltefield=DBMaxConns"`
	StorageCommitTimeout time.Duration `validate:"gt=0"`

	AuthAudience      string        `validate:"required"`
	AuthIssuers       []string      // empty accepts any issuer
	AuthHMACSecret    string        `validate:"omitempty,min=32"`
	AuthRSAPublicKey  string        // PEM
	AuthVerifyTimeout time.Duration `validate:"gt=0"`
	AuthCacheTTL      time.Duration `validate:"gte=0"`
	AuthCacheSize     int           `validate:"gte=0"`

	RedisURL             string        `validate:"omitempty,url"`
	EventsStream         string        `validate:"required"`
	EventsMaxLen         int64         `validate:"gte=0"`
	EventsPublishTimeout time.Duration `validate:"gt=0"`

	ReportForwardTimeout  time.Duration `validate:"gt=0"`
	ReportMaxPayloadBytes int           `validate:"gt=0"`

	BodyLimit          string   `validate:"required"`
	RateLimitPerMinute int      `validate:"gte=0"` // 0 disables the limiter
	RateLimitBurst     int      `validate:"gte=0"`
	CORSAllowOrigins   []string `validate:"min=1,dive,required"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	p := &parser{}
	config := &Config{
		Port: getEnv("PORT", "8080"),

		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBMaxConns:           int32(p.int("DB_MAX_CONNS", 10)),
		DBMinConns:           int32(p.int("DB_MIN_CONNS", 1)),
		StorageCommitTimeout: p.duration("STORAGE_COMMIT_TIMEOUT", 10*time.Second),

		AuthAudience:      getEnv("AUTH_AUDIENCE", ""),
		AuthIssuers:       splitList(getEnv("AUTH_ISSUERS", "")),
		AuthHMACSecret:    getEnv("AUTH_HMAC_SECRET", ""),
		AuthRSAPublicKey:  getEnv("AUTH_RSA_PUBLIC_KEY", ""),
		AuthVerifyTimeout: p.duration("AUTH_VERIFY_TIMEOUT", 3*time.Second),
		AuthCacheTTL:      p.duration("AUTH_CACHE_TTL", 5*time.Minute),
		AuthCacheSize:     p.int("AUTH_CACHE_SIZE", 1024),

		RedisURL:             getEnv("REDIS_URL", ""),
		EventsStream:         getEnv("EVENTS_STREAM", "memlib:staging:articles"),
		EventsMaxLen:         int64(p.int("EVENTS_MAX_LEN", 100000)),
		EventsPublishTimeout: p.duration("EVENTS_PUBLISH_TIMEOUT", 2*time.Second),

		ReportForwardTimeout:  p.duration("REPORT_FORWARD_TIMEOUT", 2*time.Second),
		ReportMaxPayloadBytes: p.int("REPORT_MAX_PAYLOAD_BYTES", 16*1024),

		BodyLimit:          getEnv("BODY_LIMIT", "1M"),
		RateLimitPerMinute: p.int("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     p.int("RATE_LIMIT_BURST", 20),
		CORSAllowOrigins:   splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.AuthHMACSecret == "" && c.AuthRSAPublicKey == "" {
		return errors.New("invalid configuration: AUTH_HMAC_SECRET or AUTH_RSA_PUBLIC_KEY must be set")
	}
	return nil
}

// parser keeps the first parse error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(fmt.Errorf("invalid %s format: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) int(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(fmt.Errorf("invalid %s format: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
