package store

import (
	"sync"

	"github.com/veloxchange/velox/internal/domain"
)

// ShareholderStore is a thread-safe in-memory registry for shareholders,
// keyed by shareholder_id.
type ShareholderStore struct {
	mu           sync.RWMutex
	shareholders map[string]*domain.Shareholder
}

// NewShareholderStore creates an empty ShareholderStore.
func NewShareholderStore() *ShareholderStore {
	return &ShareholderStore{
		shareholders: make(map[string]*domain.Shareholder),
	}
}

// Create adds a shareholder to the store. It returns
// domain.ErrShareholderAlreadyExists if a shareholder with the same ID
// already exists.
func (s *ShareholderStore) Create(sh *domain.Shareholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shareholders[sh.ShareholderID]; exists {
		return domain.ErrShareholderAlreadyExists
	}
	s.shareholders[sh.ShareholderID] = sh
	return nil
}

// Get retrieves a shareholder by ID. It returns
// domain.ErrShareholderNotFound if the shareholder does not exist.
func (s *ShareholderStore) Get(id string) (*domain.Shareholder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shareholders[id]
	if !ok {
		return nil, domain.ErrShareholderNotFound
	}
	return sh, nil
}

// Exists returns true if a shareholder with the given ID exists.
func (s *ShareholderStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.shareholders[id]
	return ok
}
