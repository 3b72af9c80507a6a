package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string
	CORSOrigins string

	// Chat provider (Stream)
	StreamAPIKey      string
	StreamAPISecret   string
	StreamBaseURL     string
	StreamChannelType string
	SyncTimeout       time.Duration // Upper bound for a single provider call
	SyncMaxRetries    uint64

	// Optimistic concurrency on group writes
	CASMaxRetries uint64

	// Media uploads
	MediaBackend     string // local, gcs
	FSPath           string // Physical directory for local uploads
	FSURL            string // URL path prefix for local uploads
	GCSBucket        string
	GCSPublicBaseURL string
	GCSCredentials   string // Service account key file; empty uses application default credentials
	MaxImageSizeMB   int

	// Invite janitor
	InviteRetention       time.Duration
	InviteJanitorSchedule string
}

// IsProduction reports whether cookies should be marked secure and logs emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "5001"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "langlink"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "langlink-api"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),

		StreamAPIKey:      getEnv("STREAM_API_KEY", ""),
		StreamAPISecret:   getEnv("STREAM_API_SECRET", ""),
		StreamBaseURL:     strings.TrimRight(getEnv("STREAM_BASE_URL", "https://chat.stream-io-api.com"), "/"),
		StreamChannelType: getEnv("STREAM_CHANNEL_TYPE", "messaging"),
		SyncTimeout:       getDuration("SYNC_TIMEOUT", 10*time.Second),
		SyncMaxRetries:    getUint("SYNC_MAX_RETRIES", 2),

		CASMaxRetries: getUint("CAS_MAX_RETRIES", 5),

		MediaBackend:     getEnv("MEDIA_BACKEND", "local"),
		FSPath:           getEnv("FS_PATH", "./uploads"),
		FSURL:            getEnv("FS_URL", "/fs/uploads"),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		GCSPublicBaseURL: getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		GCSCredentials:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		MaxImageSizeMB:   int(getUint("MAX_IMAGE_SIZE_MB", 5)),

		InviteRetention:       getDuration("INVITE_RETENTION", 30*24*time.Hour),
		InviteJanitorSchedule: getEnv("INVITE_JANITOR_SCHEDULE", "@daily"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getUint(key string, fallback uint64) uint64 {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("Invalid number for %s (%q), using %d", key, raw, fallback)
		return fallback
	}
	return n
}
