//go:build integration

package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/liamcoop/drills/internal/config"
	"github.com/liamcoop/drills/internal/pgtest"
	"github.com/liamcoop/drills/suites"
)

// TestEndToEnd_SuiteSurvivesRestart creates a suite with a check, builds a
// second server on the same database and evaluates the check there.
func TestEndToEnd_SuiteSurvivesRestart(t *testing.T) {
	db := pgtest.Start(t)
	cfg := config.Defaults()

	first, err := NewServer(context.Background(), db, cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	t.Cleanup(first.Close)

	var health HealthResponse
	if code := do(t, first, "GET", "/api/v1/health", nil, &health); code != http.StatusOK || health.Storage != "postgres" {
		t.Fatalf("Unexpected health: %d %+v", code, health)
	}

	if code := do(t, first, "POST", "/api/v1/suites/", CreateSuiteRequest{
		ID:     "traffic",
		Schema: suites.Schema{"speed": "int"},
	}, nil); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}

	var check map[string]any
	if code := do(t, first, "POST", "/api/v1/suites/traffic/checks", CreateCheckRequest{
		Name:       "points",
		Expression: `checkSpeed(speed) == "Points --> 4"`,
	}, &check); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}

	if code := do(t, first, "POST", "/api/v1/suites/traffic/schema", SchemaRequest{
		Definition: suites.Schema{"speed": "int", "limit": "int"},
	}, nil); code != http.StatusOK {
		t.Fatalf("Expected 200 on schema update, got %d", code)
	}

	second, err := NewServer(context.Background(), db, cfg)
	if err != nil {
		t.Fatalf("Failed to create second server: %v", err)
	}
	t.Cleanup(second.Close)

	var schema SchemaResponse
	do(t, second, "GET", "/api/v1/suites/traffic/schema", nil, &schema)
	if schema.Version != 2 || schema.Definition["limit"] != "int" {
		t.Errorf("Expected schema version 2 to be reloaded, got %+v", schema)
	}

	var eval EvaluateResponse
	code := do(t, second, "POST", "/api/v1/evaluate", EvaluateRequest{
		SuiteID: "traffic",
		Checks:  []string{check["id"].(string)},
		Facts:   map[string]any{"speed": 92},
	}, &eval)
	if code != http.StatusOK || eval.Passed != 1 {
		t.Fatalf("Expected the reloaded check to pass, got %d %+v", code, eval)
	}

	var builtin EvaluateResponse
	do(t, second, "POST", "/api/v1/evaluate", EvaluateRequest{}, &builtin)
	if builtin.Failed != 0 || builtin.Passed == 0 {
		t.Errorf("Expected the persisted catalog to pass, got %d passed %d failed", builtin.Passed, builtin.Failed)
	}
}
