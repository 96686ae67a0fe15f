package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	GeminiAPIKey   string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel    string        `mapstructure:"GEMINI_MODEL"`
	ChatTimeout    time.Duration `mapstructure:"CHAT_TIMEOUT"`
	ChatCacheSize  int           `mapstructure:"CHAT_CACHE_SIZE"`
	ChatCacheTTL   time.Duration `mapstructure:"CHAT_CACHE_TTL"`
	BookingGap     time.Duration `mapstructure:"BOOKING_GAP"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	SlotDays       int           `mapstructure:"SLOT_DAYS"`
	SlotTimes      []string      `mapstructure:"SLOT_TIMES"`
	SeedOnStart    bool          `mapstructure:"SEED_ON_START"`
	TLSEnabled     bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile    string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string        `mapstructure:"TLS_KEY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "JWT_SECRET", "JWT_TTL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "CHAT_TIMEOUT", "CHAT_CACHE_SIZE", "CHAT_CACHE_TTL",
	"BOOKING_GAP", "TIMEZONE", "SLOT_DAYS", "SLOT_TIMES", "SEED_ON_START",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("CHAT_TIMEOUT", "30s")
	v.SetDefault("CHAT_CACHE_SIZE", 256)
	v.SetDefault("CHAT_CACHE_TTL", "10m")
	v.SetDefault("BOOKING_GAP", "15m")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("SLOT_DAYS", 5)
	v.SetDefault("SLOT_TIMES", "10:00,11:00,14:00")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Comma-separated lists come in as one env string.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.SlotTimes = canonicalClock(splitList(v.GetString("SLOT_TIMES")))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: requests without a bearer token are treated as admin.")
	}

	return cfg, nil
}

// canonicalClock rewrites entries such as "9:00" as "09:00", the form stored
// on appointments. Entries that do not parse are left for Validate.
func canonicalClock(times []string) []string {
	for i, t := range times {
		if parsed, err := time.Parse("15:04", t); err == nil {
			times[i] = parsed.Format("15:04")
		}
	}
	return times
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the time zone appointment dates and times are interpreted in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the configuration is safe to run. Outside development a
// JWT signing secret is mandatory.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.BookingGap <= 0 {
		return fmt.Errorf("BOOKING_GAP must be positive, got %s", c.BookingGap)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.SlotDays <= 0 {
		return fmt.Errorf("SLOT_DAYS must be positive, got %d", c.SlotDays)
	}
	for _, t := range c.SlotTimes {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("SLOT_TIMES entry %q is not HH:MM", t)
		}
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
