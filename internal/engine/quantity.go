package engine

import (
	"github.com/veloxchange/velox/internal/domain"
)

// QuantityControl owns per-trade quantity bookkeeping: decrementing both
// sides, removing exhausted resting orders, replenishing icebergs, and
// the minimum-execution check over a completed sequence.
type QuantityControl struct{}

// NewQuantityControl creates a QuantityControl.
func NewQuantityControl() *QuantityControl {
	return &QuantityControl{}
}

// ApplyTrade decrements both orders' quantities and maintains the book:
// an exhausted resting order is removed; a resting iceberg whose
// displayed slice is spent but which still has hidden quantity is
// replenished and moved to the back of its price level. The mutations
// are recorded on the trade for rollback.
func (c *QuantityControl) ApplyTrade(t *Trade, book *OrderBook) {
	for _, o := range t.restingOrders() {
		t.undoFor(o).displayedBefore = o.Displayed
	}

	t.Buy.DecrementQuantity(t.Quantity)
	t.Sell.DecrementQuantity(t.Quantity)

	for _, o := range t.restingOrders() {
		if o.TradableQuantity() > 0 {
			continue
		}
		undo := t.undoFor(o)
		if o.Quantity > 0 {
			o.Replenish()
			undo.prevSeq = book.RequeueReplenished(o)
			undo.replenished = true
		} else {
			book.removeEntry(o)
			o.Status = domain.OrderStatusDone
			undo.removed = true
		}
	}
}

// RollbackTrade restores quantities, displayed slices, and queue
// positions to their exact pre-trade state.
func (c *QuantityControl) RollbackTrade(t *Trade, book *OrderBook) {
	for _, o := range t.restingOrders() {
		undo := t.undoFor(o)
		switch {
		case undo.removed:
			o.Quantity += t.Quantity
			o.Displayed = undo.displayedBefore
			book.Restore(o)
		case undo.replenished:
			book.removeEntry(o)
			o.EntrySeq = undo.prevSeq
			o.Quantity += t.Quantity
			o.Displayed = undo.displayedBefore
			book.Restore(o)
		default:
			o.Quantity += t.Quantity
			if o.Kind == domain.OrderKindIceberg {
				o.Displayed = undo.displayedBefore
			}
		}
	}
	if t.Incoming != nil {
		t.Incoming.IncrementQuantity(t.Quantity)
	}
}

// CheckMinimumExecution validates a completed sequence's cumulative
// traded quantity against the order's minimum execution threshold. The
// threshold binds only on first entry.
func (c *QuantityControl) CheckMinimumExecution(o *domain.Order, trades []*Trade) ControlResult {
	if o.Status != domain.OrderStatusNew || o.MinimumExecutionQuantity <= 0 {
		return ControlOK
	}
	executed := 0
	for _, t := range trades {
		executed += t.Quantity
	}
	if executed < o.MinimumExecutionQuantity {
		return ControlNotEnoughExecution
	}
	return ControlOK
}
