package domain

import (
	"sync"
	"time"
)

// Shareholder represents an owner of instrument positions. Positions are
// non-negative share counts per symbol, mutated only at trade settlement;
// the position control bounds resting sell exposure against them.
type Shareholder struct {
	ShareholderID string
	Positions     map[string]int // symbol → held shares
	CreatedAt     time.Time
	Mu            sync.Mutex // serializes position mutations across instruments
}

// Position returns the held position for a symbol, 0 when absent.
// Caller must hold Mu.
func (s *Shareholder) Position(symbol string) int {
	return s.Positions[symbol]
}

// HasEnoughPosition reports whether the holder owns at least qty shares
// of the symbol. Caller must hold Mu.
func (s *Shareholder) HasEnoughPosition(symbol string, qty int) bool {
	return s.Positions[symbol] >= qty
}

// IncPosition adds qty shares of the symbol. Caller must hold Mu.
func (s *Shareholder) IncPosition(symbol string, qty int) {
	if s.Positions == nil {
		s.Positions = make(map[string]int)
	}
	s.Positions[symbol] += qty
}

// DecPosition removes qty shares of the symbol. Caller must hold Mu.
func (s *Shareholder) DecPosition(symbol string, qty int) {
	s.Positions[symbol] -= qty
}
