package checks

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresCheckStore implements CheckStore backed by PostgreSQL. Every query
// is scoped to one suite.
type PostgresCheckStore struct {
	db      *sql.DB
	suiteID string
}

// NewPostgresCheckStore creates a store for the checks of suiteID.
func NewPostgresCheckStore(db *sql.DB, suiteID string) *PostgresCheckStore {
	return &PostgresCheckStore{
		db:      db,
		suiteID: suiteID,
	}
}

// Add inserts a new check.
func (s *PostgresCheckStore) Add(check *Check) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM checks WHERE id = $1 AND suite_id = $2)
	`, check.ID, s.suiteID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check check existence: %w", err)
	}
	if exists {
		return fmt.Errorf("check with ID %s already exists", check.ID)
	}

	now := time.Now()
	check.CreatedAt = now
	check.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO checks (id, suite_id, name, expression, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, check.ID, s.suiteID, check.Name, check.Expression, check.Active,
		check.CreatedAt, check.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert check: %w", err)
	}

	return nil
}

// Get retrieves a check by ID.
func (s *PostgresCheckStore) Get(id string) (*Check, error) {
	var check Check
	err := s.db.QueryRow(`
		SELECT id, name, expression, active, created_at, updated_at
		FROM checks
		WHERE id = $1 AND suite_id = $2
	`, id, s.suiteID).Scan(
		&check.ID,
		&check.Name,
		&check.Expression,
		&check.Active,
		&check.CreatedAt,
		&check.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check: %w", err)
	}

	return &check, nil
}

// ListActive returns the suite's active checks, oldest first.
func (s *PostgresCheckStore) ListActive() ([]*Check, error) {
	return s.list(`
		SELECT id, name, expression, active, created_at, updated_at
		FROM checks
		WHERE suite_id = $1 AND active = true
		ORDER BY created_at ASC, id ASC
	`)
}

// ListAll returns every check of the suite, active or not, oldest first.
func (s *PostgresCheckStore) ListAll() ([]*Check, error) {
	return s.list(`
		SELECT id, name, expression, active, created_at, updated_at
		FROM checks
		WHERE suite_id = $1
		ORDER BY created_at ASC, id ASC
	`)
}

func (s *PostgresCheckStore) list(query string) ([]*Check, error) {
	rows, err := s.db.Query(query, s.suiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var checks []*Check
	for rows.Next() {
		var c Check
		if err := rows.Scan(&c.ID, &c.Name, &c.Expression, &c.Active,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		checks = append(checks, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checks: %w", err)
	}

	return checks, nil
}

// Update modifies an existing check, preserving CreatedAt.
func (s *PostgresCheckStore) Update(check *Check) error {
	existing, err := s.Get(check.ID)
	if err != nil {
		return err
	}

	check.CreatedAt = existing.CreatedAt
	check.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE checks
		SET name = $1, expression = $2, active = $3, updated_at = $4
		WHERE id = $5 AND suite_id = $6
	`, check.Name, check.Expression, check.Active, check.UpdatedAt, check.ID, s.suiteID)
	if err != nil {
		return fmt.Errorf("failed to update check: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("check %s not found", check.ID)
	}

	return nil
}

// Delete removes a check.
func (s *PostgresCheckStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM checks
		WHERE id = $1 AND suite_id = $2
	`, id, s.suiteID)
	if err != nil {
		return fmt.Errorf("failed to delete check: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("check %s not found", id)
	}

	return nil
}
