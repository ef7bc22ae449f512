package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"possales/internal/auth"
	"possales/internal/loyverse"
)

// Data backends.
const (
	BackendAPI    = "api"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	Port string

	// RateLimitPerMinute bounds report requests per client; 0 disables it.
	RateLimitPerMinute int

	// Loyverse API
	APIBaseURL  string
	PageLimit   int
	MaxPages    int
	HTTPTimeout time.Duration

	// OAuth
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	TokenFile    string

	// Reporting
	ReportTimezone       string
	IncludeUncategorized bool

	// Backend selection
	DataBackend string
	FixturesDir string

	// Archive
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		APIBaseURL:  getEnv("LOYVERSE_API_BASE_URL", loyverse.DefaultBaseURL),
		PageLimit:   getEnvInt("PAGE_LIMIT", loyverse.MaxPageLimit),
		MaxPages:    getEnvInt("MAX_PAGES", loyverse.DefaultMaxPages),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		ClientID:     getEnv("LOYVERSE_CLIENT_ID", ""),
		ClientSecret: getEnv("LOYVERSE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("LOYVERSE_REDIRECT_URL", "http://localhost:8085/callback"),
		Scopes:       auth.ParseScopes(getEnv("LOYVERSE_SCOPES", strings.Join(auth.DefaultScopes, " "))),
		TokenFile:    getEnv("LOYVERSE_TOKEN_FILE", auth.DefaultTokenFile),

		ReportTimezone:       getEnv("REPORT_TIMEZONE", "UTC"),
		IncludeUncategorized: getEnvBool("INCLUDE_UNCATEGORIZED", true),

		DataBackend: getEnv("DATA_BACKEND", BackendAPI),
		FixturesDir: getEnv("FIXTURES_DIR", "./fixtures"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/possales.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "possales"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sales_reports"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Sales"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}

	switch c.DataBackend {
	case BackendAPI:
		if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid API base URL '%s': must be absolute", c.APIBaseURL))
		}
		if c.TokenFile == "" {
			errors = append(errors, "token file cannot be empty when using api backend")
		}
	case BackendMemory:
		if c.FixturesDir == "" {
			errors = append(errors, "fixtures directory cannot be empty when using memory backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendAPI, BackendMemory))
	}

	if c.PageLimit < 1 || c.PageLimit > loyverse.MaxPageLimit {
		errors = append(errors, fmt.Sprintf("invalid page limit %d: must be between 1 and %d", c.PageLimit, loyverse.MaxPageLimit))
	}
	if c.MaxPages < 1 {
		errors = append(errors, fmt.Sprintf("invalid max pages %d: must be at least 1", c.MaxPages))
	}
	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report timezone '%s': %v", c.ReportTimezone, err))
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the report time zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AuthConfig derives the OAuth handshake settings.
func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		TokenFile:    c.TokenFile,
	}
}

// SheetsEnabled reports whether a spreadsheet export target is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
