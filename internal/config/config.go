package config

import "os"

// Config holds process-level settings, all sourced from the environment
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string
	JWTSecret     string
	AdminPassword string
	// FieldKey enables encryption-at-rest of student identities when set
	FieldKey string
}

// Load reads configuration from environment variables with local defaults
func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DB", "examforge"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Port:          getEnv("PORT", "8080"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		FieldKey:      os.Getenv("FIELD_ENCRYPTION_KEY"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
