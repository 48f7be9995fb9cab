package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Durations accept Go
// duration syntax ("30s", "1m").
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username (guest list store)
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify collaborator session tokens

	CanvasWidth        float64       // plan canvas width in layout units
	CanvasHeight       float64       // plan canvas height in layout units
	CollisionTolerance float64       // overlap slack before tables conflict
	HistoryCap         int           // undo depth per plan
	LockTTL            time.Duration // table lock time-to-live
	LockSweepInterval  time.Duration // how often expired locks are collected

	SyncRetries       int           // outbound push attempts before giving up
	SyncBackoff       time.Duration // initial push retry backoff (doubles)
	ReconcileInterval time.Duration // periodic reconcile sweep interval
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message;
// engine tunables all have working defaults.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		CanvasWidth:        envFloat("SEATING_CANVAS_WIDTH", 1800),
		CanvasHeight:       envFloat("SEATING_CANVAS_HEIGHT", 1200),
		CollisionTolerance: envFloat("SEATING_COLLISION_TOLERANCE", 2),
		HistoryCap:         envInt("SEATING_HISTORY_CAP", 100),
		LockTTL:            envDur("SEATING_LOCK_TTL", 30*time.Second),
		LockSweepInterval:  envDur("SEATING_LOCK_SWEEP_INTERVAL", 5*time.Second),

		SyncRetries:       envInt("SEATING_SYNC_RETRIES", 3),
		SyncBackoff:       envDur("SEATING_SYNC_BACKOFF", 250*time.Millisecond),
		ReconcileInterval: envDur("SEATING_RECONCILE_INTERVAL", time.Minute),
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

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
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
