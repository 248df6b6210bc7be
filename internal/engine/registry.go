package engine

import (
	"sync"

	"github.com/veloxchange/velox/internal/domain"
)

// SecurityRegistry is a thread-safe map of symbol → Security. Securities
// are registered explicitly with their reference last trade price.
type SecurityRegistry struct {
	mu         sync.RWMutex
	securities map[string]*Security
}

// NewSecurityRegistry creates an empty SecurityRegistry.
func NewSecurityRegistry() *SecurityRegistry {
	return &SecurityRegistry{
		securities: make(map[string]*Security),
	}
}

// Create registers a security. It returns domain.ErrSecurityAlreadyExists
// if the symbol is taken.
func (r *SecurityRegistry) Create(sec *Security) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.securities[sec.Symbol()]; exists {
		return domain.ErrSecurityAlreadyExists
	}
	r.securities[sec.Symbol()] = sec
	return nil
}

// Get retrieves a security by symbol. It returns
// domain.ErrSecurityNotFound if the symbol is unknown.
func (r *SecurityRegistry) Get(symbol string) (*Security, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sec, ok := r.securities[symbol]
	if !ok {
		return nil, domain.ErrSecurityNotFound
	}
	return sec, nil
}

// Symbols returns the registered symbols in unspecified order.
func (r *SecurityRegistry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := make([]string, 0, len(r.securities))
	for s := range r.securities {
		symbols = append(symbols, s)
	}
	return symbols
}
