package checks

import (
	"fmt"
	"sync"
	"time"
)

// CheckStore manages check persistence and retrieval.
type CheckStore interface {
	// Add a new check
	Add(check *Check) error

	// Get a check by ID
	Get(id string) (*Check, error)

	// List all active checks, oldest first
	ListActive() ([]*Check, error)

	// List every check, active or not, oldest first
	ListAll() ([]*Check, error)

	// Update an existing check
	Update(check *Check) error

	// Delete a check
	Delete(id string) error
}

// InMemoryCheckStore implements CheckStore with a map plus insertion order.
// Safe for concurrent use.
type InMemoryCheckStore struct {
	checks map[string]*Check
	order  []string
	mu     sync.RWMutex
}

// NewInMemoryCheckStore creates an empty in-memory store.
func NewInMemoryCheckStore() *InMemoryCheckStore {
	return &InMemoryCheckStore{
		checks: make(map[string]*Check),
	}
}

// Add stores a new check and stamps CreatedAt and UpdatedAt.
// IDs are unique.
func (s *InMemoryCheckStore) Add(check *Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.checks[check.ID]; exists {
		return fmt.Errorf("check with ID %s already exists", check.ID)
	}

	now := time.Now()
	check.CreatedAt = now
	check.UpdatedAt = now
	s.checks[check.ID] = check
	s.order = append(s.order, check.ID)
	return nil
}

// Get retrieves a check by ID.
func (s *InMemoryCheckStore) Get(id string) (*Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	check, exists := s.checks[id]
	if !exists {
		return nil, fmt.Errorf("check with ID %s not found", id)
	}
	return check, nil
}

// ListActive returns the active checks in insertion order.
func (s *InMemoryCheckStore) ListActive() ([]*Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Check
	for _, id := range s.order {
		if check := s.checks[id]; check.Active {
			active = append(active, check)
		}
	}
	return active, nil
}

// ListAll returns every check in insertion order.
func (s *InMemoryCheckStore) ListAll() ([]*Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Check, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.checks[id])
	}
	return all, nil
}

// Update replaces an existing check, preserving its CreatedAt.
func (s *InMemoryCheckStore) Update(check *Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.checks[check.ID]
	if !exists {
		return fmt.Errorf("check with ID %s not found", check.ID)
	}

	check.CreatedAt = existing.CreatedAt
	check.UpdatedAt = time.Now()
	s.checks[check.ID] = check
	return nil
}

// Delete removes a check from the store.
func (s *InMemoryCheckStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.checks[id]; !exists {
		return fmt.Errorf("check with ID %s not found", id)
	}

	delete(s.checks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
