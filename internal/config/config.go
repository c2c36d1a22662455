package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt formats configuration errors
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes enum-like values
	"time"    // time parses the check-in timezone

	"github.com/joho/godotenv" // godotenv loads a local .env file into the process environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (development, production, test)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBAutoMigrate  bool   // apply embedded migrations at startup
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	AdminTTLHours  int    // admin token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing

	MinPasswordLength         int  // minimum accepted password length
	RequirePasswordComplexity bool // require upper, lower, digit and symbol
	RotateRefreshTokens       bool // revoke and reissue the refresh token on every refresh

	Timezone          string // IANA zone used for calendar-day check-ins
	RevocationBackend string // auto | memory | redis
	RabbitMQURL       string // broker URL for activity events; empty disables publishing
	ConsumerEnabled   bool   // run the activity consumer inside the server process
	ActivityLogDir    string // directory the consumer appends activity.log to
}

// Required variables that have no sensible default.
var requiredVars = []string{"JWT_SECRET", "DB_HOST", "DB_USER", "DB_NAME"}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is the normal case in containers

	var missing []string
	for _, k := range requiredVars {
		if os.Getenv(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	cfg := Config{
		Env:            envStr("APP_ENV", "development"),
		Port:           envStr("APP_PORT", "5000"),
		DBUser:         os.Getenv("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         os.Getenv("DB_NAME"),
		DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		AdminTTLHours:  envInt("ADMIN_TOKEN_TTL_HOURS", 24),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		MinPasswordLength:         envInt("MIN_PASSWORD_LENGTH", 8),
		RequirePasswordComplexity: envBool("REQUIRE_PASSWORD_COMPLEXITY", false),
		RotateRefreshTokens:       envBool("ROTATE_REFRESH_TOKENS", false),

		Timezone:          envStr("APP_TIMEZONE", "UTC"),
		RevocationBackend: strings.ToLower(envStr("REVOCATION_BACKEND", "auto")),
		RabbitMQURL:       rabbitURL(),
		ConsumerEnabled:   envBool("EVENTS_CONSUMER_ENABLED", false),
		ActivityLogDir:    envStr("ACTIVITY_LOG_DIR", "logs"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.AccessTTLMin <= 0 {
		return fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN: %d", c.AccessTTLMin)
	}
	if c.RefreshTTLDays <= 0 {
		return fmt.Errorf("invalid REFRESH_TOKEN_TTL_DAYS: %d", c.RefreshTTLDays)
	}
	if c.AdminTTLHours <= 0 {
		return fmt.Errorf("invalid ADMIN_TOKEN_TTL_HOURS: %d", c.AdminTTLHours)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("invalid BCRYPT_COST: %d", c.BcryptCost)
	}
	switch c.RevocationBackend {
	case "auto", "memory", "redis":
	default:
		return fmt.Errorf("invalid REVOCATION_BACKEND: %q", c.RevocationBackend)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// IsProduction reports whether internal error details must be hidden.
func (c Config) IsProduction() bool { return c.Env == "production" }

// Location returns the timezone used to derive check-in calendar days.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AccessTTL is the access token lifetime as a duration.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL is the refresh token lifetime as a duration.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// AdminTTL is the admin token lifetime as a duration.
func (c Config) AdminTTL() time.Duration { return time.Duration(c.AdminTTLHours) * time.Hour }

func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
