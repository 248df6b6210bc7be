package engine

import (
	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/store"
)

// ControlResult is the admit/reject outcome of a single control check.
type ControlResult int

const (
	ControlOK ControlResult = iota
	ControlNotEnoughCredit
	ControlNotEnoughPositions
	ControlNotEnoughExecution
)

// MatchingControl composes the position, credit and quantity controls
// into the chain the matcher drives: admission checks before matching,
// per-trade check and settlement, post-sequence validation, and exact
// rollback of everything a confirmed trade mutated.
type MatchingControl struct {
	position *PositionControl
	credit   *CreditControl
	quantity *QuantityControl
}

// NewMatchingControl wires the control chain over the ledger registries.
func NewMatchingControl(brokers *store.BrokerStore, shareholders *store.ShareholderStore) *MatchingControl {
	return &MatchingControl{
		position: NewPositionControl(shareholders),
		credit:   NewCreditControl(brokers),
		quantity: NewQuantityControl(),
	}
}

// CheckBeforeMatching runs the admission checks that precede any book
// interaction: the position ceiling for sell orders. Buy credit is
// checked per trade and at enqueue, not up front.
func (c *MatchingControl) CheckBeforeMatching(o *domain.Order, book *OrderBook) ControlResult {
	return c.position.CheckPosition(o, book)
}

// CheckBeforeTrade verifies a candidate trade can settle.
func (c *MatchingControl) CheckBeforeTrade(t *Trade) ControlResult {
	return c.credit.CheckTrade(t)
}

// ApplyTrade confirms a trade: credit settlement, quantity/book
// bookkeeping, position transfer.
func (c *MatchingControl) ApplyTrade(t *Trade, book *OrderBook) {
	c.credit.SettleTrade(t)
	c.quantity.ApplyTrade(t, book)
	c.position.ApplyTrade(t)
}

// RollbackTrade reverses ApplyTrade, inverting the controls in the
// opposite composition order.
func (c *MatchingControl) RollbackTrade(t *Trade, book *OrderBook) {
	c.position.RollbackTrade(t)
	c.quantity.RollbackTrade(t, book)
	c.credit.RollbackTrade(t)
}

// RollbackTrades unwinds a trade sequence in strict reverse
// chronological order. Rollback is a total function over the recorded
// trades; it cannot fail.
func (c *MatchingControl) RollbackTrades(trades []*Trade, book *OrderBook) {
	for i := len(trades) - 1; i >= 0; i-- {
		c.RollbackTrade(trades[i], book)
	}
}

// CheckAfterMatching validates the completed sequence: the minimum
// execution quantity on first entry.
func (c *MatchingControl) CheckAfterMatching(o *domain.Order, trades []*Trade) ControlResult {
	return c.quantity.CheckMinimumExecution(o, trades)
}

// CheckForQueueing verifies the broker can reserve the order's
// remaining value before it rests.
func (c *MatchingControl) CheckForQueueing(o *domain.Order) ControlResult {
	return c.credit.CheckForQueueing(o)
}

// ReserveForQueueing takes the buy-side reservation for a resting order.
func (c *MatchingControl) ReserveForQueueing(o *domain.Order) {
	c.credit.ReserveForQueueing(o)
}

// ReleaseOnRemoval returns the reservation for an order leaving the book.
func (c *MatchingControl) ReleaseOnRemoval(o *domain.Order) {
	c.credit.ReleaseOnRemoval(o)
}
