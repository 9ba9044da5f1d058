// Connectivity diagnostic for the Drupal REST API. Walks the full chain a
// sync run depends on: reachability, login, CSRF token, content type, and
// a live test node creation. Prints a pass/fail line per step.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"faculty-sync/internal/config"
	"faculty-sync/internal/domain"
	"faculty-sync/internal/mappers"
	"faculty-sync/internal/providers/drupal"
)

func status(format string, args ...any) {
	fmt.Printf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
}

func fail(format string, args ...any) {
	status("FAIL: "+format, args...)
	os.Exit(1)
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	status("Checking configuration...")
	var missing []string
	if cfg.DrupalUsername == "" {
		missing = append(missing, "DRUPAL_USERNAME")
	}
	if cfg.DrupalPassword == "" {
		missing = append(missing, "DRUPAL_PASSWORD")
	}
	if len(missing) > 0 {
		status("Missing environment variables: %s", strings.Join(missing, ", "))
		for _, v := range missing {
			status("  export %s='your_value_here'", v)
		}
		fail("configuration incomplete")
	}
	status("PASS: base URL: %s", cfg.DrupalBaseURL)
	status("PASS: username: %s", cfg.DrupalUsername)
	status("PASS: password: %s", strings.Repeat("*", len(cfg.DrupalPassword)))
	status("PASS: content type: %s", cfg.DrupalContentType)

	client, err := drupal.New(cfg, zap.NewNop())
	if err != nil {
		fail("client setup: %v", err)
	}

	status("Testing site accessibility...")
	if err := client.CheckSite(ctx); err != nil {
		fail("%v", err)
	}
	status("PASS: site is accessible")

	status("Testing authentication...")
	if err := client.Login(ctx, cfg.DrupalUsername, cfg.DrupalPassword); err != nil {
		fail("login: %v", err)
	}
	status("PASS: login successful")

	status("Fetching CSRF token...")
	if err := client.FetchToken(ctx); err != nil {
		fail("token: %v", err)
	}
	status("PASS: got CSRF token (len=%d)", len(client.Token()))

	status("Checking content type %q...", cfg.DrupalContentType)
	if err := client.CheckContentType(ctx); err != nil {
		fail("%v", err)
	}
	status("PASS: content type exists")

	status("Creating test node...")
	testRecord := domain.FacultyRecord{
		Name: fmt.Sprintf("Connection Test %s", time.Now().Format("2006-01-02 15:04:05")),
		Bio:  "Automated connectivity check - safe to delete.",
	}
	payload, err := mappers.ToNodePayload(cfg.DrupalContentType, testRecord)
	if err != nil {
		fail("payload: %v", err)
	}
	nid, err := client.CreateNode(ctx, payload)
	if err != nil {
		fail("node creation: %v", err)
	}
	if nid != "" {
		status("PASS: created test node nid=%s (delete it when done)", nid)
	} else {
		status("PASS: created test node (id not reported)")
	}

	status("All Drupal checks passed")
}
