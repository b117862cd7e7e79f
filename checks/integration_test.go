//go:build integration

package checks_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/internal/pgtest"
)

func TestPostgresCheckStore_BasicCRUD(t *testing.T) {
	db := pgtest.Start(t)
	suiteID := uuid.New().String()
	pgtest.InsertSuite(t, db, suiteID)
	store := checks.NewPostgresCheckStore(db, suiteID)

	checkID := uuid.New().String()
	check := &checks.Check{
		ID:         checkID,
		Name:       "fizz",
		Expression: `fizzBuzz(3) == "Fizz"`,
		Active:     true,
	}
	if err := store.Add(check); err != nil {
		t.Fatalf("Failed to add check: %v", err)
	}
	if err := store.Add(check); err == nil {
		t.Error("Expected error adding a duplicate check, got nil")
	}

	retrieved, err := store.Get(checkID)
	if err != nil {
		t.Fatalf("Failed to get check: %v", err)
	}
	if retrieved.Name != "fizz" || retrieved.Expression != check.Expression {
		t.Errorf("Unexpected check: %+v", retrieved)
	}

	active, err := store.ListActive()
	if err != nil {
		t.Fatalf("Failed to list active checks: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("Expected 1 active check, got %d", len(active))
	}

	check.Name = "renamed"
	check.Active = false
	if err := store.Update(check); err != nil {
		t.Fatalf("Failed to update check: %v", err)
	}
	updated, _ := store.Get(checkID)
	if updated.Name != "renamed" || updated.Active {
		t.Errorf("Update was not persisted: %+v", updated)
	}

	active, _ = store.ListActive()
	all, _ := store.ListAll()
	if len(active) != 0 || len(all) != 1 {
		t.Errorf("Expected 0 active and 1 total check, got %d and %d", len(active), len(all))
	}

	if err := store.Delete(checkID); err != nil {
		t.Fatalf("Failed to delete check: %v", err)
	}
	if _, err := store.Get(checkID); err == nil {
		t.Error("Expected error when getting deleted check, got nil")
	}
	if err := store.Delete(checkID); err == nil {
		t.Error("Expected error deleting a missing check, got nil")
	}
}

func TestPostgresCheckStore_SuiteIsolation(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.InsertSuite(t, db, "suite-a")
	pgtest.InsertSuite(t, db, "suite-b")

	storeA := checks.NewPostgresCheckStore(db, "suite-a")
	storeB := checks.NewPostgresCheckStore(db, "suite-b")

	// the same check id may exist in both suites
	if err := storeA.Add(&checks.Check{ID: "shared", Name: "a", Expression: "true", Active: true}); err != nil {
		t.Fatalf("Failed to add check for suite A: %v", err)
	}
	if err := storeB.Add(&checks.Check{ID: "shared", Name: "b", Expression: "false", Active: true}); err != nil {
		t.Fatalf("Failed to add check for suite B: %v", err)
	}
	if err := storeA.Add(&checks.Check{ID: "only-a", Name: "only", Expression: "true", Active: true}); err != nil {
		t.Fatalf("Failed to add check for suite A: %v", err)
	}

	if _, err := storeB.Get("only-a"); err == nil {
		t.Error("Suite B should not see suite A's check")
	}

	a, _ := storeA.Get("shared")
	b, _ := storeB.Get("shared")
	if a.Name != "a" || b.Name != "b" {
		t.Errorf("Suites should keep separate checks, got %q and %q", a.Name, b.Name)
	}

	listA, _ := storeA.ListActive()
	listB, _ := storeB.ListActive()
	if len(listA) != 2 || len(listB) != 1 {
		t.Errorf("Expected 2 and 1 active checks, got %d and %d", len(listA), len(listB))
	}
	if listA[0].ID != "shared" {
		t.Errorf("ListActive() should be oldest first, got %s", listA[0].ID)
	}
}

func TestPostgresEngine_CatalogRoundTrip(t *testing.T) {
	db := pgtest.Start(t)
	pgtest.InsertSuite(t, db, "catalog")

	engine, err := checks.NewEngine(checks.NewPostgresCheckStore(db, "catalog"))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	if err := checks.Seed(engine, checks.DefaultCatalog()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	// a second engine compiles everything the first one stored
	reloaded, err := checks.NewEngine(checks.NewPostgresCheckStore(db, "catalog"))
	if err != nil {
		t.Fatalf("NewEngine() on reload failed: %v", err)
	}
	results, err := reloaded.EvaluateAll(nil)
	if err != nil {
		t.Fatalf("EvaluateAll() failed: %v", err)
	}
	if len(results) != len(checks.DefaultCatalog()) {
		t.Fatalf("Expected %d results, got %d", len(checks.DefaultCatalog()), len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %s failed after reload: %v", r.CheckID, r.Error)
		}
	}
}
