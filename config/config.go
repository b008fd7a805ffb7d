package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads a local .env file when present. In deployed environments the
// variables are already set, so a missing file is not an error.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

var optionalVars = []struct {
	key    string
	effect string
}{
	{"GOOGLE_APPLICATION_CREDENTIALS", "Firebase features may not work"},
	{"FIREBASE_PROJECT_ID", "the live menu cannot be loaded from Firestore"},
	{"FIREBASE_STORAGE_BUCKET", "file uploads will fail"},
	{"GEMINI_API_KEY", "catering plans are disabled"},
	{"WHATSAPP_NUMBER", "checkout links will have no recipient"},
	{"FRONTEND_URL", "CORS may not work correctly"},
	{"ADMIN_URL", "admin dashboard CORS may not work correctly"},
	{"SMTP_HOST", "order notification emails will not be sent"},
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string
	for _, key := range []string{"JWT_SECRET", "DATABASE_URL"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	for _, v := range optionalVars {
		if os.Getenv(v.key) == "" {
			log.Printf("WARNING: %s not set - %s", v.key, v.effect)
		}
	}
	if GetEnv("STORAGE_BACKEND", "firebase") == "r2" && os.Getenv("R2_ENDPOINT") == "" {
		log.Println("WARNING: STORAGE_BACKEND is r2 but R2_ENDPOINT not set - file uploads will fail")
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt falls back to defaultValue when the variable is unset or not a number.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// GetEnvDuration accepts Go duration syntax such as "45s" or "2m".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Warning: %s=%q is not a valid duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
