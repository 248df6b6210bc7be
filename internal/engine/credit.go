package engine

import (
	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/store"
)

// CreditControl enforces broker solvency. A resting buy order holds a
// reservation for its full value; an incoming buyer is charged per trade
// at the actual execution price. Every mutation has an exact inverse.
//
// Broker lookups cannot fail here: the service layer resolves brokers
// before an order reaches the engine.
type CreditControl struct {
	brokers *store.BrokerStore
}

// NewCreditControl creates a CreditControl over the broker registry.
func NewCreditControl(brokers *store.BrokerStore) *CreditControl {
	return &CreditControl{brokers: brokers}
}

// CheckForQueueing reports whether the order's broker can reserve the
// order's full value. Sell orders always pass.
func (c *CreditControl) CheckForQueueing(o *domain.Order) ControlResult {
	if o.Side != domain.SideBuy {
		return ControlOK
	}
	b, _ := c.brokers.Get(o.BrokerID)
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if !b.HasEnoughCredit(o.Value()) {
		return ControlNotEnoughCredit
	}
	return ControlOK
}

// ReserveForQueueing takes the reservation for a buy order about to rest
// on the book or park in the stop pool.
func (c *CreditControl) ReserveForQueueing(o *domain.Order) {
	if o.Side != domain.SideBuy {
		return
	}
	b, _ := c.brokers.Get(o.BrokerID)
	b.Mu.Lock()
	b.DecreaseCredit(o.Value())
	b.Mu.Unlock()
}

// ReleaseOnRemoval returns the reservation for the order's remaining
// quantity when it leaves the book without trading that portion.
func (c *CreditControl) ReleaseOnRemoval(o *domain.Order) {
	if o.Side != domain.SideBuy {
		return
	}
	b, _ := c.brokers.Get(o.BrokerID)
	b.Mu.Lock()
	b.IncreaseCredit(o.Value())
	b.Mu.Unlock()
}

// CheckTrade verifies the buyer can pay the trade's value. A reserved
// (resting) buyer always passes: the reservation was taken at a price at
// or above the trade price.
func (c *CreditControl) CheckTrade(t *Trade) ControlResult {
	if !t.buyerIsIncoming() {
		return ControlOK
	}
	b, _ := c.brokers.Get(t.Buy.BrokerID)
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if !b.HasEnoughCredit(t.Value()) {
		return ControlNotEnoughCredit
	}
	return ControlOK
}

// SettleTrade moves the trade's value between the two brokers. An
// incoming buyer is debited in full; a resting buyer already paid via
// its reservation and is refunded the surplus when the trade executes
// below its limit price. Locks are taken sequentially, never nested, so
// self-trading brokers cannot deadlock.
func (c *CreditControl) SettleTrade(t *Trade) {
	buyer, _ := c.brokers.Get(t.Buy.BrokerID)
	buyer.Mu.Lock()
	if t.buyerIsIncoming() {
		buyer.DecreaseCredit(t.Value())
	} else {
		buyer.IncreaseCredit(t.surplus())
	}
	buyer.Mu.Unlock()

	seller, _ := c.brokers.Get(t.Sell.BrokerID)
	seller.Mu.Lock()
	seller.IncreaseCredit(t.Value())
	seller.Mu.Unlock()
}

// RollbackTrade reverses SettleTrade exactly.
func (c *CreditControl) RollbackTrade(t *Trade) {
	seller, _ := c.brokers.Get(t.Sell.BrokerID)
	seller.Mu.Lock()
	seller.DecreaseCredit(t.Value())
	seller.Mu.Unlock()

	buyer, _ := c.brokers.Get(t.Buy.BrokerID)
	buyer.Mu.Lock()
	if t.buyerIsIncoming() {
		buyer.IncreaseCredit(t.Value())
	} else {
		buyer.DecreaseCredit(t.surplus())
	}
	buyer.Mu.Unlock()
}

// surplus is the part of a resting buyer's reservation not consumed by a
// trade below its limit price. Zero in continuous matching, where trades
// execute at the resting buyer's own price.
func (t *Trade) surplus() int64 {
	return int64(t.Buy.Price-t.Price) * int64(t.Quantity)
}
