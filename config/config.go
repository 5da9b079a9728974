package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO对象存储配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string
	// Public base URL used to build retrievable object URLs, e.g. "http://localhost:9000/hummify"
	MinioPublicURL string

	// Synthesizer (external process) configuration
	SynthCommand   string // interpreter or binary, e.g. "python3"
	SynthScript    string // script passed as first argument; empty if SynthCommand is self-contained
	SoundFontPath  string
	SynthWorkDir   string // scratch directory for rendered wav files
	SynthTimeout   time.Duration
	DefaultTempo   int

	// Artifact retention
	RetentionWindow time.Duration // how long unpromoted artifacts and raw hums live
	SweepInterval   time.Duration // how often the reclamation sweeper runs

	// Auth
	JWTSecret string
	JWTTTL    time.Duration
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration (e.g. "12h", "60s")
// or returns a default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:     getEnv("DB_NAME", "hummify"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "hummify"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", "http://127.0.0.1:9000/hummify"),

		SynthCommand:  getEnv("SYNTH_COMMAND", "python3"),
		SynthScript:   getEnv("SYNTH_SCRIPT", "python/synth.py"),
		SoundFontPath: getEnv("SOUNDFONT_PATH", "python/FluidR3_GM.sf2"),
		SynthWorkDir:  getEnv("SYNTH_WORK_DIR", "uploads"),
		SynthTimeout:  getEnvDuration("SYNTH_TIMEOUT", 60*time.Second),
		DefaultTempo:  getEnvInt("DEFAULT_TEMPO", 120),

		RetentionWindow: getEnvDuration("RETENTION_WINDOW", 12*time.Hour),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 12*time.Hour),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:    getEnvDuration("JWT_TTL", 72*time.Hour),
	}
}
