package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the ingestion and read path
type Config struct {
	Port   string
	DBPath string

	// Intake validation
	MaxAccuracyM  float64
	MaxFutureSkew time.Duration
	MaxReportAge  time.Duration

	// Plausibility
	MaxSpeedMPH float64

	// Rate limiting
	IngestMinInterval time.Duration
	IngestIdleExpiry  time.Duration
	SweepInterval     time.Duration
	PublicReadsPerMin int

	// Geofencing
	GeofenceStreakThreshold int
	GeofenceDefaultRadiusM  float64

	// Public reads
	PublicLinkTTL    time.Duration
	SnapshotCacheTTL time.Duration

	// Optional integrations; empty disables them
	NATSURL     string
	MetricsAddr string
}

// Load reads configuration from .env and the environment
func Load() *Config {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	return &Config{
		Port:   getenvDefault("PORT", ":8080"),
		DBPath: getenvDefault("DB_PATH", "./data/tracking.db"),

		MaxAccuracyM:  getenvFloat("MAX_ACCURACY_M", 5000),
		MaxFutureSkew: getenvSeconds("MAX_FUTURE_SKEW_S", 300),
		MaxReportAge:  time.Duration(getenvInt("MAX_REPORT_AGE_H", 24)) * time.Hour,

		MaxSpeedMPH: getenvFloat("MAX_SPEED_MPH", 120),

		IngestMinInterval: getenvSeconds("INGEST_MIN_INTERVAL_S", 30),
		IngestIdleExpiry:  getenvSeconds("INGEST_IDLE_EXPIRY_S", 300),
		SweepInterval:     getenvSeconds("SWEEP_INTERVAL_S", 60),
		PublicReadsPerMin: getenvInt("PUBLIC_READS_PER_MIN", 60),

		GeofenceStreakThreshold: getenvInt("GEOFENCE_STREAK_THRESHOLD", 3),
		GeofenceDefaultRadiusM:  getenvFloat("GEOFENCE_DEFAULT_RADIUS_M", 300),

		PublicLinkTTL:    time.Duration(getenvInt("PUBLIC_LINK_TTL_DAYS", 7)) * 24 * time.Hour,
		SnapshotCacheTTL: getenvSeconds("SNAPSHOT_CACHE_TTL_S", 10),

		NATSURL:     os.Getenv("NATS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
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

func getenvSeconds(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Second
}
