package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port    string
		GinMode string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	Object struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
		PublicURL string
	}

	Admin struct {
		// Bcrypt hash of the shared admin passphrase.
		PassphraseHash string
		JWTSecret      string
		TokenTTL       time.Duration
	}

	Reveal RevealTimings
}

// RevealTimings controls the pacing of the staged results reveal.
// Offsets are measured from the end of the counting interval.
type RevealTimings struct {
	Counting     time.Duration
	ThirdOffset  time.Duration
	SecondOffset time.Duration
	FirstOffset  time.Duration
	DrawOffset   time.Duration
	FinaleHold   time.Duration
}

// DefaultRevealTimings mirrors the pacing of the live ceremony.
func DefaultRevealTimings() RevealTimings {
	return RevealTimings{
		Counting:     3 * time.Second,
		ThirdOffset:  1 * time.Second,
		SecondOffset: 3 * time.Second,
		FirstOffset:  5 * time.Second,
		DrawOffset:   8 * time.Second,
		FinaleHold:   3 * time.Second,
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "galawall")
	config.DB.Password = getEnv("DB_PASSWORD", "galawall_password")
	config.DB.Name = getEnv("DB_NAME", "galawall_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.Object.Endpoint = getEnv("OBJECT_ENDPOINT", "")
	config.Object.AccessKey = getEnv("OBJECT_ACCESS_KEY", "")
	config.Object.SecretKey = getEnv("OBJECT_SECRET_KEY", "")
	config.Object.Bucket = getEnv("OBJECT_BUCKET", "galawall-photos")
	config.Object.UseSSL = getEnvAsBool("OBJECT_USE_SSL", false)
	config.Object.PublicURL = getEnv("OBJECT_PUBLIC_URL", "")

	config.Admin.PassphraseHash = getEnv("ADMIN_PASSPHRASE_HASH", "")
	config.Admin.JWTSecret = getEnv("ADMIN_JWT_SECRET", "galawall-dev-secret")
	config.Admin.TokenTTL = getEnvAsDuration("ADMIN_TOKEN_TTL", 4*time.Hour)

	defaults := DefaultRevealTimings()
	config.Reveal.Counting = getEnvAsDuration("REVEAL_COUNTING", defaults.Counting)
	config.Reveal.ThirdOffset = getEnvAsDuration("REVEAL_THIRD_OFFSET", defaults.ThirdOffset)
	config.Reveal.SecondOffset = getEnvAsDuration("REVEAL_SECOND_OFFSET", defaults.SecondOffset)
	config.Reveal.FirstOffset = getEnvAsDuration("REVEAL_FIRST_OFFSET", defaults.FirstOffset)
	config.Reveal.DrawOffset = getEnvAsDuration("REVEAL_DRAW_OFFSET", defaults.DrawOffset)
	config.Reveal.FinaleHold = getEnvAsDuration("REVEAL_FINALE_HOLD", defaults.FinaleHold)

	return config
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
