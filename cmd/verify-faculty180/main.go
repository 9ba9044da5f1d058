// Connectivity diagnostic for the Faculty180 API. Checks configuration,
// authentication and response structure, and prints a pass/fail line per
// step for manual troubleshooting.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"faculty-sync/internal/config"
	"faculty-sync/internal/devutil"
	"faculty-sync/internal/httpx"
	"faculty-sync/internal/providers/faculty180"
)

func status(format string, args ...any) {
	fmt.Printf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
}

func fail(format string, args ...any) {
	status("FAIL: "+format, args...)
	os.Exit(1)
}

func mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func main() {
	cfg := config.Load()

	status("Checking configuration...")
	if cfg.FacultyAPIToken == "" {
		status("FACULTY_API_TOKEN is not set")
		status("Please set: export FACULTY_API_TOKEN='your_token_here'")
		fail("configuration incomplete")
	}
	status("PASS: API URL: %s", cfg.FacultyAPIURL)
	status("PASS: API token: %s", mask(cfg.FacultyAPIToken))

	retry := httpx.RetryConfig{MaxAttempts: cfg.MaxRetries, Delay: cfg.RetryDelay}
	client := faculty180.New(cfg.FacultyAPIURL, cfg.FacultyAPIToken, cfg.HTTPTimeout, retry)

	status("Testing API connection...")
	records, err := client.Fetch(context.Background())
	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			switch herr.StatusCode {
			case http.StatusUnauthorized:
				fail("authentication failed (401) - check your API token")
			case http.StatusForbidden:
				fail("access forbidden (403) - check API permissions")
			case http.StatusNotFound:
				fail("endpoint not found (404) - check FACULTY_API_URL")
			default:
				fail("unexpected status %d: %s", herr.StatusCode, httpx.Snippet(herr.Body, 200))
			}
		}
		fail("connection error: %v", err)
	}
	status("PASS: API connection successful")

	status("Analyzing response structure...")
	status("PASS: parsed %d record(s)", len(records))
	if len(records) > 0 {
		keys := make([]string, 0, len(records[0]))
		for k := range records[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		status("First record keys: %v", keys)
		status("Mapped fields: %v", devutil.Pick(records[0],
			"name", "bio", "email", "phone", "department", "title", "office"))
		if _, ok := records[0]["name"]; ok {
			status("PASS: records carry the required 'name' field")
		} else {
			fail("records are missing the required 'name' field")
		}
	}

	status("All Faculty180 checks passed")
}
