package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default Gmail OAuth scopes requested at sign-in.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",
}

// clientIDPattern matches Google OAuth client identifiers
// (e.g. 123456789-abcd1234.apps.googleusercontent.com).
var clientIDPattern = regexp.MustCompile(`^\d+-[a-zA-Z0-9]+\.apps\.googleusercontent\.com$`)

// apiKeyPrefix is the prefix Google API keys carry.
const apiKeyPrefix = "AIza"

// Placeholder values from setup templates that must never be accepted as credentials.
var placeholderValues = map[string]bool{
	"your_actual_client_id_here.apps.googleusercontent.com": true,
	"your_actual_api_key_here":                              true,
	"AIzaSyABC123DEF456GHI789JKL":                           true,
}

// Config holds all runtime configuration for the application.
type Config struct {
	// Google OAuth credentials.
	ClientID     string
	ClientSecret string
	APIKey       string
	Scopes       []string

	// Gemini generative-language API.
	GeminiAPIKey   string
	GeminiEndpoint string
	GeminiModel    string

	// Local state.
	CacheDir string
	DBPath   string

	// Provider readiness probing during initialization.
	ReadinessTimeout  time.Duration
	ReadinessInterval time.Duration

	LogLevel string
}

// ConfigurationError indicates bad or missing credentials. It is fatal;
// the user must fix their setup before the application can run.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	return Config{
		ClientID:          getEnvString("GOOGLE_CLIENT_ID", ""),
		ClientSecret:      getEnvString("GOOGLE_CLIENT_SECRET", ""),
		APIKey:            getEnvString("GOOGLE_API_KEY", ""),
		Scopes:            getEnvList("GMAIL_SCOPES", DefaultScopes),
		GeminiAPIKey:      getEnvString("GEMINI_API_KEY", ""),
		GeminiEndpoint:    getEnvString("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:       getEnvString("GEMINI_MODEL", "gemini-2.0-flash"),
		CacheDir:          getEnvString("MAILPANE_CACHE_DIR", defaultCacheDir()),
		DBPath:            getEnvString("MAILPANE_DB_PATH", ""),
		ReadinessTimeout:  getEnvDuration("READINESS_TIMEOUT", 2*time.Second),
		ReadinessInterval: getEnvDuration("READINESS_INTERVAL", 100*time.Millisecond),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
	}
}

// Validate checks presence and shape of the required Google credentials.
func (c *Config) Validate() error {
	if c.ClientID == "" || placeholderValues[c.ClientID] {
		return &ConfigurationError{
			Field:  "GOOGLE_CLIENT_ID",
			Reason: "missing or placeholder value; set your OAuth client ID from Google Cloud Console",
		}
	}
	if !clientIDPattern.MatchString(c.ClientID) {
		return &ConfigurationError{
			Field:  "GOOGLE_CLIENT_ID",
			Reason: "invalid format, expected something like 123456789-abcd1234.apps.googleusercontent.com",
		}
	}
	if c.APIKey == "" || placeholderValues[c.APIKey] {
		return &ConfigurationError{
			Field:  "GOOGLE_API_KEY",
			Reason: "missing or placeholder value; set your API key from Google Cloud Console",
		}
	}
	if !strings.HasPrefix(c.APIKey, apiKeyPrefix) {
		return &ConfigurationError{
			Field:  "GOOGLE_API_KEY",
			Reason: fmt.Sprintf("invalid format, Google API keys start with %q", apiKeyPrefix),
		}
	}
	if c.ReadinessTimeout <= 0 {
		return &ConfigurationError{Field: "READINESS_TIMEOUT", Reason: "must be positive"}
	}
	if c.ReadinessInterval <= 0 {
		return &ConfigurationError{Field: "READINESS_INTERVAL", Reason: "must be positive"}
	}
	return nil
}

// DatabasePath returns the SQLite path, defaulting to a file under the cache dir.
func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.CacheDir, "mailpane.db")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mailpane")
}

func getEnvString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		var out []string
		for _, item := range strings.Split(value, " ") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
		// Bare numbers are treated as seconds.
		if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
