package checks

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Checks []catalogEntry `yaml:"checks"`
}

type catalogEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Active     *bool  `yaml:"active"`
}

// LoadCatalog reads a YAML list of checks. Entries need an id and an
// expression; name defaults to the expression and active to true.
func LoadCatalog(r io.Reader) ([]*Check, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Checks))
	out := make([]*Check, 0, len(f.Checks))
	for i, e := range f.Checks {
		if e.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i+1)
		}
		if e.Expression == "" {
			return nil, fmt.Errorf("catalog entry %q has no expression", e.ID)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %q is duplicated", e.ID)
		}
		seen[e.ID] = true

		c := &Check{
			ID:         e.ID,
			Name:       e.Name,
			Expression: e.Expression,
			Active:     true,
		}
		if c.Name == "" {
			c.Name = c.Expression
		}
		if e.Active != nil {
			c.Active = *e.Active
		}
		out = append(out, c)
	}
	return out, nil
}

// DefaultCatalog returns a fresh copy of the built-in checks.
func DefaultCatalog() []*Check {
	checks, err := LoadCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return checks
}

// Seed adds checks to en in order.
func Seed(en *Engine, checks []*Check) error {
	for _, c := range checks {
		if err := en.AddCheck(c); err != nil {
			return fmt.Errorf("failed to seed check %s: %w", c.ID, err)
		}
	}
	return nil
}
