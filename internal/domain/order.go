package domain

// OrderKind distinguishes the supported order variants.
type OrderKind string

const (
	OrderKindLimit     OrderKind = "limit"
	OrderKindIceberg   OrderKind = "iceberg"
	OrderKindStopLimit OrderKind = "stop_limit"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	// OrderStatusNew marks an order that has not yet been admitted.
	// Minimum-execution validation applies only to new orders.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusQueued marks an order resting on the book or parked in
	// the stop pool.
	OrderStatusQueued OrderStatus = "queued"
	// OrderStatusSnapshot marks a copy taken before an update so the
	// original can be restored if re-admission fails.
	OrderStatusSnapshot OrderStatus = "snapshot"
	// OrderStatusDone marks an order whose quantity is exhausted.
	OrderStatusDone OrderStatus = "done"
	// OrderStatusCancelled marks an order deleted before exhaustion.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the shared record behind all order variants. Variant-specific
// fields (PeakSize/Displayed for icebergs, StopPrice for stop-limits) are
// meaningful only for the matching Kind.
//
// Quantity is the remaining total quantity, including any hidden iceberg
// portion. Brokers and shareholders are referenced by identifier; all
// ledger mutation goes through the engine's controls.
type Order struct {
	OrderID       int64
	Symbol        string
	Side          Side
	Kind          OrderKind
	Quantity      int
	Price         int
	BrokerID      string
	ShareholderID string
	EntrySeq      uint64 // time priority, assigned on arrival
	Status        OrderStatus

	// MinimumExecutionQuantity, when positive, requires at least this
	// cumulative traded quantity on first entry or the whole submission
	// is rolled back.
	MinimumExecutionQuantity int

	// Iceberg fields.
	PeakSize  int
	Displayed int

	// Stop-limit fields.
	StopPrice int
}

// Value is the order's full potential cost: remaining quantity times the
// limit price. Buy reservations are taken against this amount.
func (o *Order) Value() int64 {
	return int64(o.Quantity) * int64(o.Price)
}

// TradableQuantity is the quantity a single trade may consume from this
// order while it rests on the book: the displayed slice for icebergs, the
// full remaining quantity otherwise.
func (o *Order) TradableQuantity() int {
	if o.Kind == OrderKindIceberg {
		return o.Displayed
	}
	return o.Quantity
}

// CanTradeAt reports whether the order's limit price admits a trade at
// the given price.
func (o *Order) CanTradeAt(price int) bool {
	if o.Side == SideBuy {
		return o.Price >= price
	}
	return o.Price <= price
}

// Crosses reports whether this incoming order's price overlaps the given
// resting order on the opposite side.
func (o *Order) Crosses(resting *Order) bool {
	if o.Side == SideBuy {
		return o.Price >= resting.Price
	}
	return o.Price <= resting.Price
}

// IsTriggered reports whether a stop-limit order's trigger condition is
// satisfied by the last trade price: buys trigger at or above the stop
// price, sells at or below.
func (o *Order) IsTriggered(lastTradePrice int) bool {
	if o.Side == SideBuy {
		return o.StopPrice <= lastTradePrice
	}
	return o.StopPrice >= lastTradePrice
}

// Replenish resets an iceberg's displayed quantity to min(peak, remaining).
// No-op for other kinds.
func (o *Order) Replenish() {
	if o.Kind != OrderKindIceberg {
		return
	}
	o.Displayed = o.Quantity
	if o.Displayed > o.PeakSize {
		o.Displayed = o.PeakSize
	}
}

// DecrementQuantity consumes traded quantity from the order, including
// the displayed slice for icebergs. An incoming iceberg trades on its
// full remaining quantity, so its displayed slice is clamped at zero
// rather than going negative.
func (o *Order) DecrementQuantity(qty int) {
	o.Quantity -= qty
	if o.Kind == OrderKindIceberg {
		o.Displayed -= qty
		if o.Displayed < 0 {
			o.Displayed = 0
		}
	}
}

// IncrementQuantity reverses DecrementQuantity during rollback. Resting
// icebergs restore their exact displayed value separately; here the
// displayed slice is only kept within the peak.
func (o *Order) IncrementQuantity(qty int) {
	o.Quantity += qty
	if o.Kind == OrderKindIceberg {
		o.Displayed += qty
		if o.Displayed > o.PeakSize {
			o.Displayed = o.PeakSize
		}
	}
}

// Snapshot returns a copy of the order marked with snapshot status, used
// to restore the original when an update's re-admission fails.
func (o *Order) Snapshot() *Order {
	snap := *o
	snap.Status = OrderStatusSnapshot
	return &snap
}

// RestoreFrom copies every field back from a snapshot, re-marking the
// order as queued.
func (o *Order) RestoreFrom(snap *Order) {
	*o = *snap
	o.Status = OrderStatusQueued
}
