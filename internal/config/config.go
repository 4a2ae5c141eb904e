package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// devSecret prefixes the fallback JWT secrets for non-production
// environments.  It lets the service boot in dev/test without a .env, but
// must never be used in prod; Load enforces that.  Each profile gets its own
// suffix so access and refresh tokens stay cryptographically independent
// even on the fallback path.
const devSecret = "dev-insecure-secret"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	AccessSecret   string // secret used to sign access tokens
	RefreshSecret  string // secret used to sign refresh tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.  The two JWT secrets are
// required in prod; elsewhere a fixed development default is substituted with
// a logged warning so that local runs do not need real secrets.
func Load() Config {
	env := must("APP_ENV")
	return Config{
		Env:            env,
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		AccessSecret:   secret("JWT_ACCESS_SECRET", env, "access"),
		RefreshSecret:  secret("JWT_REFRESH_SECRET", env, "refresh"),
		AccessTTLMin:   intOr("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     intOr("BCRYPT_COST", 12),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// secret retrieves a signing secret.  Absent secrets are fatal in prod and
// fall back to a per-profile development default (with a warning) everywhere
// else.  The suffix keeps the access and refresh fallbacks distinct: tokens
// signed under one profile must never verify under the other, dev included.
func secret(key, env, suffix string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if env == "prod" {
		log.Fatalf("missing required env var: %s", key)
	}
	log.Printf("warn: %s not set, using insecure development default", key)
	return devSecret + "-" + suffix
}

// intOr reads an integer environment variable, returning the default when the
// variable is unset.  An unparseable value is fatal rather than silently
// replaced: a typo in a TTL should not shorten or extend credential lifetimes.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
