package domain

import (
	"sync"
	"time"
)

// Broker represents a participant extending credit to its orders. Credit
// is held in integer currency units and must never be observed negative;
// reservations taken for resting buy orders enforce this prospectively.
type Broker struct {
	BrokerID  string
	Credit    int64
	CreatedAt time.Time
	Mu        sync.Mutex // serializes credit mutations across instruments
}

// HasEnoughCredit reports whether the broker can cover the given amount.
// Caller must hold Mu.
func (b *Broker) HasEnoughCredit(amount int64) bool {
	return b.Credit >= amount
}

// DecreaseCredit removes the given amount from the broker's credit.
// Caller must hold Mu.
func (b *Broker) DecreaseCredit(amount int64) {
	b.Credit -= amount
}

// IncreaseCredit adds the given amount to the broker's credit.
// Caller must hold Mu.
func (b *Broker) IncreaseCredit(amount int64) {
	b.Credit += amount
}
