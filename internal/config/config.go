package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables abort startup when missing;
// optional ones fall back to sensible defaults so a bare deployment still
// comes up with booking, sessions and the retention sweeper working.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxConns     int    // connection pool size
	DBConnLifeMin  int    // connection max lifetime in minutes
	SessionSecret  string // secret used to sign session cookie tokens
	SessionTTLMin  int    // admin session time-to-live in minutes
	BcryptCost     int    // bcrypt cost for credential hashing
	AdminUser      string // bootstrap admin username (used only when seeding)
	AdminSetupPass string // bootstrap admin password; seeding is skipped when empty
	ReceiptDir     string // directory where booking receipts are written
	SweepEveryHrs  int    // retention sweeper interval in hours
	RetentionDays  int    // served bookings older than this many days are purged
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxConns:     optInt("DB_MAX_CONNS", 10),
		DBConnLifeMin:  optInt("DB_CONN_LIFE_MIN", 30),
		SessionSecret:  must("SESSION_SECRET"),
		SessionTTLMin:  optInt("SESSION_TTL_MIN", 60),
		BcryptCost:     optInt("BCRYPT_COST", 12),
		AdminUser:      optStr("ADMIN_USER", "admin"),
		AdminSetupPass: os.Getenv("ADMIN_SETUP_PASSWORD"), // empty disables seeding
		ReceiptDir:     optStr("RECEIPT_DIR", "comprovantes"),
		SweepEveryHrs:  optInt("SWEEP_INTERVAL_HOURS", 24),
		RetentionDays:  optInt("RETENTION_DAYS", 30),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// optStr returns the value of an optional environment variable or the
// provided default when it is unset or empty.
func optStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// optInt is like optStr but converts the value to an integer. A malformed
// value is treated as a configuration error and aborts startup.
func optInt(key string, def int) int {
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
