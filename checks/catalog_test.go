package checks

import (
	"strings"
	"testing"
)

func TestDefaultCatalogPasses(t *testing.T) {
	engine, _ := NewEngine(NewInMemoryCheckStore())

	catalog := DefaultCatalog()
	if len(catalog) == 0 {
		t.Fatal("default catalog is empty")
	}
	if err := Seed(engine, catalog); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	results, err := engine.EvaluateAll(nil)
	if err != nil {
		t.Fatalf("EvaluateAll() failed: %v", err)
	}
	if len(results) != len(catalog) {
		t.Fatalf("got %d results, want %d", len(results), len(catalog))
	}
	for _, r := range results {
		if r.Error != nil || !r.Passed {
			t.Errorf("check %s (%s) failed: output %v, error %v", r.CheckID, r.CheckName, r.Output, r.Error)
		}
	}
}

func TestDefaultCatalogIsFresh(t *testing.T) {
	a := DefaultCatalog()
	a[0].Expression = "false"

	b := DefaultCatalog()
	if b[0].Expression == "false" {
		t.Error("DefaultCatalog() should return a new copy each call")
	}
}

func TestLoadCatalog(t *testing.T) {
	src := `
checks:
  - id: one
    expression: fizzBuzz(3) == "Fizz"
  - id: two
    name: disabled
    expression: "false"
    active: false
`
	checks, err := LoadCatalog(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadCatalog() failed: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if checks[0].Name != `fizzBuzz(3) == "Fizz"` || !checks[0].Active {
		t.Errorf("first check should default name and active, got %+v", checks[0])
	}
	if checks[1].Name != "disabled" || checks[1].Active {
		t.Errorf("second check should keep name and be inactive, got %+v", checks[1])
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"not yaml", "checks: [", "failed to parse catalog"},
		{"unknown field", "checks:\n  - id: a\n    expr: true\n", "failed to parse catalog"},
		{"missing id", "checks:\n  - expression: \"true\"\n", "has no id"},
		{"missing expression", "checks:\n  - id: a\n", "has no expression"},
		{"duplicate", "checks:\n  - id: a\n    expression: \"true\"\n  - id: a\n    expression: \"false\"\n", "duplicated"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("LoadCatalog() should fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestSeedStopsOnInvalidCheck(t *testing.T) {
	engine, _ := NewEngine(NewInMemoryCheckStore())

	err := Seed(engine, []*Check{
		{ID: "ok", Expression: `true`, Active: true},
		{ID: "bad", Expression: `findMax(`, Active: true},
	})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("Seed() error = %v, want failure naming the bad check", err)
	}
}
