package suites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/internal/logger"
)

// BuiltinSuiteID names the suite holding the default catalog.
const BuiltinSuiteID = "builtin"

// BuiltinSchema declares the single dynamic variable the default catalog
// may use.
var BuiltinSchema = Schema{checks.InputVariable: "dyn"}

var suiteIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,100}$`)

var (
	ErrSuiteNotFound = errors.New("suite not found")
	ErrSuiteExists   = errors.New("suite already exists")
	ErrBuiltinSuite  = errors.New("the builtin suite cannot be deleted")
)

// Suite is an isolated set of checks with its own variable schema. A Suite
// is never modified after it is published; schema updates replace it.
type Suite struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Schema        Schema         `json:"schema"`
	SchemaVersion int            `json:"schemaVersion"`
	CreatedAt     time.Time      `json:"createdAt"`
	Engine        *checks.Engine `json:"-"`
}

// Manager owns the engines of all suites. With a nil database suites and
// their checks live in memory only.
type Manager struct {
	suites   map[string]*Suite
	db       *sql.DB
	cacheTTL time.Duration
	mu       sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithProgramCacheTTL sets how long each suite keeps compiled ad-hoc
// expressions.
func WithProgramCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.cacheTTL = ttl }
}

// NewManager creates a manager. db may be nil.
func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{
		suites:   make(map[string]*Suite),
		db:       db,
		cacheTTL: checks.DefaultProgramCacheTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newStore(suiteID string) checks.CheckStore {
	if m.db == nil {
		return checks.NewInMemoryCheckStore()
	}
	return checks.NewPostgresCheckStore(m.db, suiteID)
}

func (m *Manager) buildEngine(schema Schema, store checks.CheckStore) (*checks.Engine, error) {
	env, err := NewEnv(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	engine, err := checks.NewEngineWithEnv(env, store)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	engine.SetProgramCache(checks.NewProgramCache(m.cacheTTL, checks.DefaultProgramCacheSize))
	return engine, nil
}

// LoadAllSuites loads every suite with its active schema from the database
// and compiles its checks. It does nothing without a database.
func (m *Manager) LoadAllSuites(ctx context.Context) error {
	if m.db == nil {
		return nil
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.created_at, sc.version, sc.definition
		FROM suites s
		JOIN schemas sc ON sc.suite_id = s.id
		WHERE sc.active = true
		ORDER BY s.id
	`)
	if err != nil {
		return fmt.Errorf("failed to fetch suites: %w", err)
	}
	defer rows.Close()

	var loaded []*Suite
	for rows.Next() {
		s := &Suite{}
		var schemaJSON []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.SchemaVersion, &schemaJSON); err != nil {
			return fmt.Errorf("failed to scan suite row: %w", err)
		}
		if err := json.Unmarshal(schemaJSON, &s.Schema); err != nil {
			return fmt.Errorf("invalid schema for suite %s: %w", s.ID, err)
		}
		loaded = append(loaded, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating suite rows: %w", err)
	}

	for _, s := range loaded {
		engine, err := m.buildEngine(s.Schema, m.newStore(s.ID))
		if err != nil {
			return fmt.Errorf("failed to initialize suite %s: %w", s.ID, err)
		}
		s.Engine = engine

		m.mu.Lock()
		m.suites[s.ID] = s
		m.mu.Unlock()
	}

	logger.Info("suites loaded", "count", len(loaded))
	return nil
}

// CreateSuite validates schema, persists the suite when a database is
// configured and starts an engine for it.
func (m *Manager) CreateSuite(ctx context.Context, id, name string, schema Schema) (*Suite, error) {
	if !suiteIDPattern.MatchString(id) {
		return nil, fmt.Errorf("invalid suite id %q: must match %s", id, suiteIDPattern)
	}
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	if name == "" {
		name = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.suites[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSuiteExists, id)
	}

	engine, err := m.buildEngine(schema, m.newStore(id))
	if err != nil {
		return nil, err
	}

	s := &Suite{
		ID:            id,
		Name:          name,
		Schema:        schema,
		SchemaVersion: 1,
		CreatedAt:     time.Now(),
		Engine:        engine,
	}

	if m.db != nil {
		if err := m.insertSuite(ctx, s); err != nil {
			return nil, err
		}
	}

	m.suites[id] = s
	logger.Info("suite created", "suite_id", id, "variables", len(schema))
	return s, nil
}

func (m *Manager) insertSuite(ctx context.Context, s *Suite) error {
	schemaJSON, err := json.Marshal(s.Schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO suites (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, s.ID, s.Name, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert suite: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schemas (suite_id, version, definition, active, created_at)
		VALUES ($1, $2, $3, true, $4)
	`, s.ID, s.SchemaVersion, schemaJSON, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit suite: %w", err)
	}
	return nil
}

// GetSuite returns the current published suite.
func (m *Manager) GetSuite(id string) (*Suite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.suites[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSuiteNotFound, id)
	}
	return s, nil
}

// GetEngine returns the engine for a suite.
func (m *Manager) GetEngine(id string) (*checks.Engine, error) {
	s, err := m.GetSuite(id)
	if err != nil {
		return nil, err
	}
	return s.Engine, nil
}

// UpdateSuiteSchema replaces a suite's schema without downtime: a new engine
// is built and every active check recompiled against the new schema before
// it is swapped in. Requests keep using the old engine until then, and keep
// it for good if any check no longer compiles.
func (m *Manager) UpdateSuiteSchema(ctx context.Context, id string, schema Schema) (*Suite, error) {
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.suites[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSuiteNotFound, id)
	}

	engine, err := m.buildEngine(schema, existing.Engine.Store())
	if err != nil {
		return nil, err
	}

	next := &Suite{
		ID:            existing.ID,
		Name:          existing.Name,
		Schema:        schema,
		SchemaVersion: existing.SchemaVersion + 1,
		CreatedAt:     existing.CreatedAt,
		Engine:        engine,
	}

	if m.db != nil {
		version, err := m.insertSchemaVersion(ctx, id, schema)
		if err != nil {
			return nil, err
		}
		next.SchemaVersion = version
	}

	m.suites[id] = next
	logger.Info("suite schema updated", "suite_id", id, "version", next.SchemaVersion)
	return next, nil
}

func (m *Manager) insertSchemaVersion(ctx context.Context, id string, schema Schema) (int, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal schema: %w", err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE schemas
		SET active = false
		WHERE suite_id = $1
	`, id); err != nil {
		return 0, fmt.Errorf("failed to deactivate old schemas: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO schemas (suite_id, version, definition, active, created_at)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, true, NOW()
		FROM schemas
		WHERE suite_id = $1
		RETURNING version
	`, id, schemaJSON).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to save new schema: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE suites SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to touch suite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit schema: %w", err)
	}
	return version, nil
}

// ListSuites returns all loaded suites ordered by ID.
func (m *Manager) ListSuites() []*Suite {
	m.mu.RLock()
	defer m.mu.RUnlock()

	suites := make([]*Suite, 0, len(m.suites))
	for _, s := range m.suites {
		suites = append(suites, s)
	}
	sort.Slice(suites, func(i, j int) bool { return suites[i].ID < suites[j].ID })
	return suites
}

// DeleteSuite removes a suite, and with a database its schemas and checks.
func (m *Manager) DeleteSuite(ctx context.Context, id string) error {
	if id == BuiltinSuiteID {
		return ErrBuiltinSuite
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.suites[id]; !exists {
		return fmt.Errorf("%w: %s", ErrSuiteNotFound, id)
	}

	if m.db != nil {
		if _, err := m.db.ExecContext(ctx, `DELETE FROM suites WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete suite: %w", err)
		}
	}

	delete(m.suites, id)
	logger.Info("suite deleted", "suite_id", id)
	return nil
}

// EnsureBuiltin makes sure the builtin suite exists and seeds it with the
// default catalog when it holds no checks.
func (m *Manager) EnsureBuiltin(ctx context.Context) (*Suite, error) {
	s, err := m.GetSuite(BuiltinSuiteID)
	if errors.Is(err, ErrSuiteNotFound) {
		s, err = m.CreateSuite(ctx, BuiltinSuiteID, "Built-in checks", BuiltinSchema)
	}
	if err != nil {
		return nil, err
	}

	existing, err := s.Engine.Store().ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list builtin checks: %w", err)
	}
	if len(existing) > 0 {
		return s, nil
	}

	catalog := checks.DefaultCatalog()
	if err := checks.Seed(s.Engine, catalog); err != nil {
		return nil, err
	}
	logger.Info("builtin suite seeded", "checks", len(catalog))
	return s, nil
}
