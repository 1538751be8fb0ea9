package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Database
	DBDriver     string // "sqlite" | "postgres"
	DBDSN        string // sqlite file DSN or postgres URL
	SeedDefaults bool   // insert the default categories into an empty database

	// Admin access
	AdminPassword     string        // plain password, hashed at startup
	AdminPasswordHash string        // bcrypt hash, wins over AdminPassword
	AdminToken        string        // optional static bearer token (automation)
	SessionTTL        time.Duration // lifetime of login sessions
	SecureCookies     bool          // set Secure on the session cookie

	// Redis (sessions). Empty address disables session login.
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Live stream
	StreamKeepAlive   time.Duration // interval between ": ping" comments
	StreamMaxDuration time.Duration // hard cap on one stream connection
	StreamBuffer      int           // per-client queue length

	// Homepage import (optional, both empty = disabled)
	ImportFile         string        // bookmarks.yaml
	ImportServicesFile string        // services.yaml
	ImportInterval     time.Duration // between automatic imports
	ImportPrivate      bool          // imported bookmarks are created private

	// Event export (optional, empty = disabled)
	NATSURL           string
	NATSSubjectPrefix string

	// S3 backups (optional, empty bucket = disabled)
	BackupBucket   string
	BackupKey      string
	BackupRegion   string
	BackupEndpoint string // for S3-compatible stores (MinIO, R2, ...)
	BackupInterval time.Duration

	AllowedHosts []string // optional, restrict infra endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict infra endpoints to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	LoginBurst        int     // login attempts allowed in a burst per client IP
	LoginRefillPerMin float64 // login attempts regained per minute
}

// Load reads the configuration from the environment, after a .env file
// when one exists. It panics on invalid values.
func Load() *Config {
	loadEnvFile(getenv("LINKVAULT_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKVAULT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKVAULT_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKVAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKVAULT_PRETTY_LOG", true),

		// Database
		DBDriver:     getenv("LINKVAULT_DB_DRIVER", "sqlite"),
		DBDSN:        getenv("LINKVAULT_DB_DSN", "file:linkvault.db?_foreign_keys=on&_journal_mode=WAL"),
		SeedDefaults: mustBool("LINKVAULT_SEED_DEFAULTS", true),

		// Admin access
		AdminPassword:     getenv("LINKVAULT_ADMIN_PASSWORD", ""),
		AdminPasswordHash: getenv("LINKVAULT_ADMIN_PASSWORD_HASH", ""),
		AdminToken:        getenv("LINKVAULT_ADMIN_TOKEN", ""),
		SessionTTL:        mustDuration("LINKVAULT_SESSION_TTL", 7*24*time.Hour),
		SecureCookies:     mustBool("LINKVAULT_SECURE_COOKIES", true),

		// Redis settings
		RedisAddr:             getenv("LINKVAULT_REDIS_ADDR", ""),
		RedisUser:             getenv("LINKVAULT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKVAULT_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LINKVAULT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LINKVAULT_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Live stream
		StreamKeepAlive:   mustDuration("LINKVAULT_STREAM_KEEPALIVE", 30*time.Second),
		StreamMaxDuration: mustDuration("LINKVAULT_STREAM_MAX_DURATION", time.Hour),
		StreamBuffer:      getenvInt("LINKVAULT_STREAM_BUFFER", 64),

		// Import
		ImportFile:         getenv("LINKVAULT_IMPORT_FILE", ""),
		ImportServicesFile: getenv("LINKVAULT_IMPORT_SERVICES_FILE", ""),
		ImportInterval:     mustDuration("LINKVAULT_IMPORT_INTERVAL", 24*time.Hour),
		ImportPrivate:      mustBool("LINKVAULT_IMPORT_PRIVATE", false),

		// Export
		NATSURL:           getenv("LINKVAULT_NATS_URL", ""),
		NATSSubjectPrefix: getenv("LINKVAULT_NATS_SUBJECT_PREFIX", "linkvault"),

		// Backups
		BackupBucket:   getenv("LINKVAULT_BACKUP_S3_BUCKET", ""),
		BackupKey:      getenv("LINKVAULT_BACKUP_S3_KEY", "linkvault/backup.json"),
		BackupRegion:   getenv("LINKVAULT_BACKUP_S3_REGION", "us-east-1"),
		BackupEndpoint: getenv("LINKVAULT_BACKUP_S3_ENDPOINT", ""),
		BackupInterval: mustDuration("LINKVAULT_BACKUP_INTERVAL", 24*time.Hour),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKVAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKVAULT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKVAULT_TRUST_PROXY", true),

		LoginBurst:        getenvInt("LINKVAULT_LOGIN_BURST", 5),
		LoginRefillPerMin: getenvFloat("LINKVAULT_LOGIN_REFILL_PER_MIN", 5),
	}

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		panic("❌ FATAL: LINKVAULT_ADMIN_PASSWORD or LINKVAULT_ADMIN_PASSWORD_HASH must be set")
	}

	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite", "sqlite3":
	case "postgres", "postgresql", "pg":
		cfg.DBDSN = requireEnv("LINKVAULT_DB_DSN")
	default:
		panic(fmt.Sprintf("❌ FATAL: Unsupported LINKVAULT_DB_DRIVER: %s", cfg.DBDriver))
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKVAULT_REDIS_PASSWORD is required when LINKVAULT_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.StreamKeepAlive <= 0 || cfg.StreamMaxDuration <= 0 {
		panic("❌ FATAL: LINKVAULT_STREAM_KEEPALIVE and LINKVAULT_STREAM_MAX_DURATION must be > 0")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	const redacted = "***REDACTED***"
	for _, s := range []*string{&c.AdminPassword, &c.AdminPasswordHash, &c.AdminToken, &c.RedisPassword} {
		if *s != "" {
			*s = redacted
		}
	}
	if c.RedisUser != "" {
		c.RedisUser = redacted
	}
	if strings.Contains(c.DBDSN, "@") {
		c.DBDSN = redacted
	}
	return c
}

// ImportEnabled reports whether a Homepage file is configured.
func (c *Config) ImportEnabled() bool { return c.ImportFile != "" || c.ImportServicesFile != "" }

// SessionsEnabled reports whether password login is available.
func (c *Config) SessionsEnabled() bool { return c.RedisAddr != "" }

// loadEnvFile loads a dotenv file when present. Real environment
// variables always win.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
