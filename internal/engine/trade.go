package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/veloxchange/velox/internal/domain"
)

// sideUndo records the book mutations a confirmed trade performed on one
// resting order so rollback can restore the pre-trade state exactly.
type sideUndo struct {
	removed         bool
	replenished     bool
	prevSeq         uint64
	displayedBefore int
}

// Trade is a candidate or confirmed execution between a buy and a sell
// order. It is created pending; the control chain mutates ledgers and
// book state when it is applied, and the recorded undo information makes
// the reversal total.
//
// Incoming is nil for auction trades, where both sides rest on the book.
type Trade struct {
	TradeID    string
	Symbol     string
	Buy        *domain.Order
	Sell       *domain.Order
	Incoming   *domain.Order
	Price      int
	Quantity   int
	ExecutedAt time.Time

	buyUndo  sideUndo
	sellUndo sideUndo
}

// newContinuousTrade forms a candidate trade between an incoming order
// and the resting order it crosses. Price priority belongs to the
// resting order; quantity is the minimum of the incoming remainder and
// the resting order's tradable (displayed) quantity.
func newContinuousTrade(symbol string, incoming, resting *domain.Order) *Trade {
	qty := incoming.Quantity
	if resting.TradableQuantity() < qty {
		qty = resting.TradableQuantity()
	}
	t := &Trade{
		TradeID:    uuid.New().String(),
		Symbol:     symbol,
		Incoming:   incoming,
		Price:      resting.Price,
		Quantity:   qty,
		ExecutedAt: time.Now(),
	}
	if incoming.Side == domain.SideBuy {
		t.Buy, t.Sell = incoming, resting
	} else {
		t.Buy, t.Sell = resting, incoming
	}
	return t
}

// newAuctionTrade forms a candidate trade between the best resting buy
// and sell at the uniform opening price.
func newAuctionTrade(symbol string, buy, sell *domain.Order, openingPrice int) *Trade {
	qty := buy.TradableQuantity()
	if sell.TradableQuantity() < qty {
		qty = sell.TradableQuantity()
	}
	return &Trade{
		TradeID:    uuid.New().String(),
		Symbol:     symbol,
		Buy:        buy,
		Sell:       sell,
		Price:      openingPrice,
		Quantity:   qty,
		ExecutedAt: time.Now(),
	}
}

// Value is the trade's settlement amount: price times quantity.
func (t *Trade) Value() int64 {
	return int64(t.Price) * int64(t.Quantity)
}

// buyerIsIncoming reports whether the buy side entered unreserved; such
// a buyer is charged at trade time instead of consuming a reservation.
func (t *Trade) buyerIsIncoming() bool {
	return t.Incoming == t.Buy
}

// restingOrders returns the trade's resting sides in a fixed order:
// both for auction trades, one for continuous trades.
func (t *Trade) restingOrders() []*domain.Order {
	if t.Incoming == nil {
		return []*domain.Order{t.Buy, t.Sell}
	}
	if t.Incoming == t.Buy {
		return []*domain.Order{t.Sell}
	}
	return []*domain.Order{t.Buy}
}

// undoFor returns the undo slot for the given order.
func (t *Trade) undoFor(o *domain.Order) *sideUndo {
	if o == t.Buy {
		return &t.buyUndo
	}
	return &t.sellUndo
}

// Record converts the trade to the reported, immutable tape record.
func (t *Trade) Record() *domain.Trade {
	return &domain.Trade{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		Price:       t.Price,
		Quantity:    t.Quantity,
		BuyOrderID:  t.Buy.OrderID,
		SellOrderID: t.Sell.OrderID,
		ExecutedAt:  t.ExecutedAt,
	}
}
