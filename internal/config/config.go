package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go-storefront/pkg/database"
	"go-storefront/pkg/jwt"
)

type Config struct {
	ServiceName string
	Env         string
	Port        string
	LogLevel    string

	Database database.Config
	JWT      jwt.Config

	CookieSecure   bool
	UploadDir      string
	AdminSignupKey string
	SeedAdminEmail string
	SeedAdminPass  string
	LowStockLimit  int

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() Config {
	return Config{
		ServiceName: getenv("SERVICE_NAME", "go-storefront"),
		Env:         getenv("APP_ENV", "dev"),
		Port:        getenv("PORT", "3000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		Database: database.Config{
			DSN:          os.Getenv("DATABASE_URL"),
			Host:         getenv("DB_HOST", "localhost"),
			User:         getenv("DB_USER", "postgres"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getenv("DB_NAME", "storefront"),
			Port:         getenv("DB_PORT", "5432"),
			TimeZone:     getenv("DB_TIMEZONE", "UTC"),
			LogLevel:     getenv("DB_LOG_LEVEL", "warn"),
			MaxIdleConns: getint("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getint("DB_MAX_OPEN_CONNS", 100),
		},
		JWT: jwt.Config{
			AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     getduration("JWT_ACCESS_TTL", 30*time.Minute),
			RefreshTTL:    getduration("JWT_REFRESH_TTL", 7*24*time.Hour),
			Issuer:        getenv("JWT_ISSUER", "go-storefront"),
		},

		CookieSecure:   getbool("COOKIE_SECURE", false),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		AdminSignupKey: os.Getenv("ADMIN_SIGNUP_KEY"),
		SeedAdminEmail: os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPass:  os.Getenv("SEED_ADMIN_PASSWORD"),
		LowStockLimit:  getint("LOW_STOCK_LIMIT", 10),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "storefront.events"),
	}
}

// Validate reports the first setting that makes startup unsafe
func (c Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return errMissing("JWT_ACCESS_SECRET")
	}
	if c.JWT.RefreshSecret == "" {
		return errMissing("JWT_REFRESH_SECRET")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return configError("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	return nil
}

type configError string

func (e configError) Error() string { return "config: " + string(e) }

func errMissing(key string) error { return configError(key + " is required") }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
