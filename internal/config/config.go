package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port             string        // HTTP listen port
	AllowedOrigin    string        // CORS origin of the editor frontend
	ValkeyAddr       string        // Valkey address for project persistence; empty disables it
	JWTSecret        string        // HS256 signing secret; empty disables auth
	AccessKeyHash    string        // bcrypt hash of the editor access key
	AutosaveDebounce time.Duration // How long to coalesce edits before persisting
}

// Load reads .env if present and fills the config from the environment with
// development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment and defaults")
	}

	return Config{
		Port:             getenv("PORT", "8080"),
		AllowedOrigin:    getenv("ALLOWED_ORIGIN", "http://127.0.0.1:5173"),
		ValkeyAddr:       os.Getenv("VALKEY_ADDR"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AccessKeyHash:    os.Getenv("ACCESS_KEY_HASH"),
		AutosaveDebounce: time.Duration(getenvInt("AUTOSAVE_DEBOUNCE_MS", 750)) * time.Millisecond,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
