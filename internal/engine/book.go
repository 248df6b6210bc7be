package engine

import (
	"sync/atomic"

	"github.com/google/btree"

	"github.com/veloxchange/velox/internal/domain"
)

// bookEntry keys an order inside one of the book's B-trees. Price is the
// limit price for queued orders and the stop price for parked stop-limit
// orders; Seq carries time priority within a price level.
type bookEntry struct {
	Price int
	Seq   uint64
	Order *domain.Order
}

// PriceLevel is an aggregated view of one price level, with quantity
// limited to what is visible (the displayed slice for icebergs).
type PriceLevel struct {
	Price      int
	Quantity   int
	OrderCount int
}

// buyLess orders the buy queue: price descending, then entry sequence
// ascending. Min() returns the best bid.
func buyLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Seq < b.Seq
}

// sellLess orders the sell queue: price ascending, then entry sequence
// ascending. Min() returns the best ask.
func sellLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Seq < b.Seq
}

// stopBuyLess orders parked buy stops by stop price ascending so the
// order closest to triggering is evaluated first.
func stopBuyLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Seq < b.Seq
}

// stopSellLess orders parked sell stops by stop price descending.
func stopSellLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Seq < b.Seq
}

// OrderBook holds the resting interest of a single instrument: a buy and
// a sell queue in price-time priority plus a pool of inactive stop-limit
// orders per side. An order appears in at most one tree at a time.
//
// The book performs no ledger controls itself; callers reserve credit
// before a buy order is enqueued. The book is not safe for concurrent
// use; the owning Security serializes access.
type OrderBook struct {
	symbol string
	seq    atomic.Uint64

	buys  *btree.BTreeG[bookEntry]
	sells *btree.BTreeG[bookEntry]
	index map[int64]bookEntry // order_id → queued entry

	stopBuys  *btree.BTreeG[bookEntry]
	stopSells *btree.BTreeG[bookEntry]
	stopIndex map[int64]bookEntry // order_id → parked entry
}

// NewOrderBook creates an empty order book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	const degree = 32
	return &OrderBook{
		symbol:    symbol,
		buys:      btree.NewG[bookEntry](degree, buyLess),
		sells:     btree.NewG[bookEntry](degree, sellLess),
		index:     make(map[int64]bookEntry),
		stopBuys:  btree.NewG[bookEntry](degree, stopBuyLess),
		stopSells: btree.NewG[bookEntry](degree, stopSellLess),
		stopIndex: make(map[int64]bookEntry),
	}
}

// Symbol returns the instrument this book belongs to.
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// NextSeq returns the next entry sequence number. Sequence numbers are
// monotonic, so re-inserting an order under its original sequence puts
// it back in exactly its original position.
func (ob *OrderBook) NextSeq() uint64 {
	return ob.seq.Add(1)
}

func (ob *OrderBook) queue(side domain.Side) *btree.BTreeG[bookEntry] {
	if side == domain.SideBuy {
		return ob.buys
	}
	return ob.sells
}

func (ob *OrderBook) stopPool(side domain.Side) *btree.BTreeG[bookEntry] {
	if side == domain.SideBuy {
		return ob.stopBuys
	}
	return ob.stopSells
}

// Enqueue inserts an order into its side's queue under the order's
// current entry sequence and marks it queued. Credit reservation for buy
// orders must already have been performed by the caller.
func (ob *OrderBook) Enqueue(o *domain.Order) {
	entry := bookEntry{Price: o.Price, Seq: o.EntrySeq, Order: o}
	ob.queue(o.Side).ReplaceOrInsert(entry)
	ob.index[o.OrderID] = entry
	o.Status = domain.OrderStatusQueued
}

// Remove deletes a queued order from the addressed side. It returns
// domain.ErrOrderNotFound if no such order rests on that side.
func (ob *OrderBook) Remove(side domain.Side, orderID int64) (*domain.Order, error) {
	entry, ok := ob.index[orderID]
	if !ok || entry.Order.Side != side {
		return nil, domain.ErrOrderNotFound
	}
	delete(ob.index, orderID)
	ob.queue(side).Delete(entry)
	return entry.Order, nil
}

// removeEntry drops a known queued order, used by the matcher when a
// resting order is exhausted or an iceberg is requeued.
func (ob *OrderBook) removeEntry(o *domain.Order) {
	entry, ok := ob.index[o.OrderID]
	if !ok {
		return
	}
	delete(ob.index, o.OrderID)
	ob.queue(o.Side).Delete(entry)
}

// RequeueReplenished moves a replenished iceberg to the back of its
// price level by re-inserting it under a fresh entry sequence. The
// previous sequence is returned so a rollback can restore it.
func (ob *OrderBook) RequeueReplenished(o *domain.Order) uint64 {
	prev := o.EntrySeq
	ob.removeEntry(o)
	o.EntrySeq = ob.NextSeq()
	ob.Enqueue(o)
	return prev
}

// Restore re-inserts an order under its existing entry sequence,
// recovering its original queue position. Used by rollback and by the
// update path when re-admission fails.
func (ob *OrderBook) Restore(o *domain.Order) {
	ob.Enqueue(o)
}

// FindOrderToMatchWith returns the head of the queue opposite the given
// order if the two prices cross, or nil when no match exists.
func (ob *OrderBook) FindOrderToMatchWith(o *domain.Order) *domain.Order {
	head, ok := ob.queue(o.Side.Opposite()).Min()
	if !ok {
		return nil
	}
	if !o.Crosses(head.Order) {
		return nil
	}
	return head.Order
}

// BestOrder returns the highest-priority order on the given side, or nil
// when the side is empty.
func (ob *OrderBook) BestOrder(side domain.Side) *domain.Order {
	entry, ok := ob.queue(side).Min()
	if !ok {
		return nil
	}
	return entry.Order
}

// LowestPriorityOrder returns the last order in priority order on the
// given side, or nil when the side is empty. The auction price scan uses
// it to bound the candidate range.
func (ob *OrderBook) LowestPriorityOrder(side domain.Side) *domain.Order {
	entry, ok := ob.queue(side).Max()
	if !ok {
		return nil
	}
	return entry.Order
}

// HasOrderOfSide reports whether any order rests on the given side.
func (ob *OrderBook) HasOrderOfSide(side domain.Side) bool {
	return ob.queue(side).Len() > 0
}

// OrderCount returns the number of orders resting on the given side.
func (ob *OrderBook) OrderCount(side domain.Side) int {
	return ob.queue(side).Len()
}

// FindByOrderID locates an order on the addressed side, searching the
// queue first and then the stop pool. Returns domain.ErrOrderNotFound
// when absent.
func (ob *OrderBook) FindByOrderID(side domain.Side, orderID int64) (*domain.Order, error) {
	if entry, ok := ob.index[orderID]; ok && entry.Order.Side == side {
		return entry.Order, nil
	}
	if entry, ok := ob.stopIndex[orderID]; ok && entry.Order.Side == side {
		return entry.Order, nil
	}
	return nil, domain.ErrOrderNotFound
}

// Ascend walks the given side in priority order. The callback returns
// true to continue.
func (ob *OrderBook) Ascend(side domain.Side, fn func(*domain.Order) bool) {
	ob.queue(side).Ascend(func(entry bookEntry) bool {
		return fn(entry.Order)
	})
}

// ParkStop places an inactive stop-limit order into its side's pool,
// keyed by stop price, and marks it queued.
func (ob *OrderBook) ParkStop(o *domain.Order) {
	entry := bookEntry{Price: o.StopPrice, Seq: o.EntrySeq, Order: o}
	ob.stopPool(o.Side).ReplaceOrInsert(entry)
	ob.stopIndex[o.OrderID] = entry
	o.Status = domain.OrderStatusQueued
}

// RemoveStop deletes a parked stop order from the addressed side. It
// returns domain.ErrOrderNotFound if no such order is parked there.
func (ob *OrderBook) RemoveStop(side domain.Side, orderID int64) (*domain.Order, error) {
	entry, ok := ob.stopIndex[orderID]
	if !ok || entry.Order.Side != side {
		return nil, domain.ErrOrderNotFound
	}
	delete(ob.stopIndex, orderID)
	ob.stopPool(side).Delete(entry)
	return entry.Order, nil
}

// NextTriggeredStop removes and returns the highest-priority stop order
// whose trigger condition is satisfied by the last trade price, or nil
// when none qualifies. Calling it repeatedly drains every triggered stop.
func (ob *OrderBook) NextTriggeredStop(lastTradePrice int) *domain.Order {
	for _, side := range []domain.Side{domain.SideBuy, domain.SideSell} {
		entry, ok := ob.stopPool(side).Min()
		if !ok {
			continue
		}
		if entry.Order.IsTriggered(lastTradePrice) {
			delete(ob.stopIndex, entry.Order.OrderID)
			ob.stopPool(side).Delete(entry)
			return entry.Order
		}
	}
	return nil
}

// IsParked reports whether the order sits in the stop pool rather than
// a queue.
func (ob *OrderBook) IsParked(orderID int64) bool {
	_, ok := ob.stopIndex[orderID]
	return ok
}

// StopOrderCount returns the number of parked stop orders on the given side.
func (ob *OrderBook) StopOrderCount(side domain.Side) int {
	return ob.stopPool(side).Len()
}

// TotalSellQuantityByShareholder sums the remaining quantities of the
// shareholder's sell orders currently resting on the book.
func (ob *OrderBook) TotalSellQuantityByShareholder(shareholderID string) int {
	total := 0
	ob.sells.Ascend(func(entry bookEntry) bool {
		if entry.Order.ShareholderID == shareholderID {
			total += entry.Order.Quantity
		}
		return true
	})
	return total
}

// Depth returns up to n aggregated price levels for the given side, with
// iceberg orders contributing only their displayed quantity.
func (ob *OrderBook) Depth(side domain.Side, n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	ob.queue(side).Ascend(func(entry bookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].Quantity += entry.Order.TradableQuantity()
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:      entry.Price,
			Quantity:   entry.Order.TradableQuantity(),
			OrderCount: 1,
		})
		return true
	})
	return levels
}
