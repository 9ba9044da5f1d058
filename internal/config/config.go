package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries every setting the pipeline and the verify commands need.
// It is built once at process start and passed explicitly; nothing reads
// the environment after Load returns.
type Config struct {
	// Faculty180
	FacultyAPIURL   string
	FacultyAPIToken string

	// Drupal
	DrupalBaseURL     string
	DrupalUsername    string
	DrupalPassword    string
	DrupalContentType string

	// HTTP behavior
	HTTPTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration

	// Pipeline behavior
	RecordDelay time.Duration
	SyncWorkers int

	// Logging
	AppEnv   string
	LogLevel string
	LogFile  string
}

func Load() Config {
	v := viper.New()

	v.SetDefault("FACULTY_API_URL", "https://api.faculty180.com/v1/faculty")
	v.SetDefault("DRUPAL_BASE_URL", "https://yoursite.com")
	v.SetDefault("DRUPAL_CONTENT_TYPE", "faculty_profile")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_DELAY_SECONDS", 2)
	v.SetDefault("RECORD_DELAY_SECONDS", 1)
	v.SetDefault("SYNC_WORKERS", 1)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	// Read from a .env file if one exists next to the binary.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	return Config{
		FacultyAPIURL:   strings.TrimRight(v.GetString("FACULTY_API_URL"), "/"),
		FacultyAPIToken: v.GetString("FACULTY_API_TOKEN"),

		DrupalBaseURL:     strings.TrimRight(v.GetString("DRUPAL_BASE_URL"), "/"),
		DrupalUsername:    v.GetString("DRUPAL_USERNAME"),
		DrupalPassword:    v.GetString("DRUPAL_PASSWORD"),
		DrupalContentType: v.GetString("DRUPAL_CONTENT_TYPE"),

		HTTPTimeout: time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		MaxRetries:  v.GetInt("MAX_RETRIES"),
		RetryDelay:  time.Duration(v.GetInt("RETRY_DELAY_SECONDS")) * time.Second,

		RecordDelay: time.Duration(v.GetInt("RECORD_DELAY_SECONDS")) * time.Second,
		SyncWorkers: v.GetInt("SYNC_WORKERS"),

		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
	}
}

// Missing returns the name of every required variable that is unset.
// Secrets have no defaults, so empty means missing.
func (c Config) Missing() []string {
	var missing []string
	if c.FacultyAPIToken == "" {
		missing = append(missing, "FACULTY_API_TOKEN")
	}
	if c.DrupalUsername == "" {
		missing = append(missing, "DRUPAL_USERNAME")
	}
	if c.DrupalPassword == "" {
		missing = append(missing, "DRUPAL_PASSWORD")
	}
	return missing
}

// Validate reports all missing required variables in one error so a
// misconfigured deployment can be fixed in a single pass.
func (c Config) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

/* -------- Drupal endpoints -------- */

func (c Config) LoginURL() string {
	return c.DrupalBaseURL + "/user/login?_format=json"
}

func (c Config) TokenURL() string {
	return c.DrupalBaseURL + "/rest/session/token"
}

func (c Config) NodeURL() string {
	return c.DrupalBaseURL + "/node?_format=json"
}

// NodeTypeURL points at the REST resource that exists only when the
// content type is configured on the target site.
func (c Config) NodeTypeURL() string {
	return fmt.Sprintf("%s/rest/type/node/%s?_format=json", c.DrupalBaseURL, c.DrupalContentType)
}
