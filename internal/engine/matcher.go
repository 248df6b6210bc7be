package engine

import (
	"github.com/veloxchange/velox/internal/domain"
)

// Matcher implements continuous price-time-priority matching and
// call-auction price discovery, both driven through the control chain.
// A multi-trade sequence is atomic with respect to the incoming order:
// any rejection rolls back every trade the sequence confirmed.
type Matcher struct {
	control *MatchingControl
}

// NewMatcher creates a Matcher over the given control chain.
func NewMatcher(control *MatchingControl) *Matcher {
	return &Matcher{control: control}
}

// ContinuousExecuting runs the continuous algorithm for an incoming
// order: admission checks, the match loop against the opposite queue
// head, post-sequence minimum-execution validation, and re-admission of
// any remainder. Trades execute at the resting order's price.
func (m *Matcher) ContinuousExecuting(o *domain.Order, book *OrderBook) *MatchResult {
	if r := m.control.CheckBeforeMatching(o, book); r != ControlOK {
		return resultFrom(r, o)
	}

	var trades []*Trade
	for o.Quantity > 0 {
		resting := book.FindOrderToMatchWith(o)
		if resting == nil {
			break
		}
		t := newContinuousTrade(book.Symbol(), o, resting)
		if r := m.control.CheckBeforeTrade(t); r != ControlOK {
			m.control.RollbackTrades(trades, book)
			return resultFrom(r, o)
		}
		m.control.ApplyTrade(t, book)
		trades = append(trades, t)
	}

	if r := m.control.CheckAfterMatching(o, trades); r != ControlOK {
		m.control.RollbackTrades(trades, book)
		return resultFrom(r, o)
	}

	if o.Quantity > 0 {
		if r := m.control.CheckForQueueing(o); r != ControlOK {
			m.control.RollbackTrades(trades, book)
			return resultFrom(r, o)
		}
		m.control.ReserveForQueueing(o)
		o.Replenish()
		book.Enqueue(o)
	} else {
		o.Status = domain.OrderStatusDone
	}

	return &MatchResult{Outcome: OutcomeExecuted, Trades: trades, Order: o}
}

// CalcOpeningAuctionPrice scans every integer price spanned by resting
// interest and returns the price maximizing tradable quantity. Ties
// break toward the previous last trade price, then toward the lower
// price. With either side empty the last trade price stands.
func (m *Matcher) CalcOpeningAuctionPrice(book *OrderBook, lastTradePrice int) int {
	if !hasOrderForAuction(book) {
		return lastTradePrice
	}

	minPrice := book.LowestPriorityOrder(domain.SideBuy).Price
	maxPrice := book.LowestPriorityOrder(domain.SideSell).Price

	maxTradable := 0
	openingPrice := lastTradePrice
	for price := minPrice; price <= maxPrice; price++ {
		tradable := m.TradableQuantityAt(book, price)
		if tradable > maxTradable {
			openingPrice = price
			maxTradable = tradable
		} else if tradable == maxTradable && abs(price-lastTradePrice) < abs(openingPrice-lastTradePrice) {
			openingPrice = price
		}
	}
	return openingPrice
}

// TradableQuantityAt computes the quantity that would trade at a
// candidate price: the minimum of buy and sell interest willing to
// trade there, counting icebergs at their full remaining quantity.
func (m *Matcher) TradableQuantityAt(book *OrderBook, price int) int {
	buys, sells := 0, 0
	book.Ascend(domain.SideBuy, func(o *domain.Order) bool {
		if o.CanTradeAt(price) {
			buys += o.Quantity
		}
		return true
	})
	book.Ascend(domain.SideSell, func(o *domain.Order) bool {
		if o.CanTradeAt(price) {
			sells += o.Quantity
		}
		return true
	})
	if buys < sells {
		return buys
	}
	return sells
}

// AuctionExecuting discovers the opening price and executes all crossing
// interest at that uniform price, pairing the best resting sell with the
// best resting buy until one side no longer qualifies. Both sides are
// resting, so settlement refunds the buyer's reservation surplus.
func (m *Matcher) AuctionExecuting(book *OrderBook, lastTradePrice int) (int, []*Trade) {
	openingPrice := m.CalcOpeningAuctionPrice(book, lastTradePrice)

	var trades []*Trade
	for hasOrderForAuction(book) {
		buy := book.BestOrder(domain.SideBuy)
		sell := book.BestOrder(domain.SideSell)
		if !buy.CanTradeAt(openingPrice) || !sell.CanTradeAt(openingPrice) {
			break
		}
		t := newAuctionTrade(book.Symbol(), buy, sell, openingPrice)
		if r := m.control.CheckBeforeTrade(t); r != ControlOK {
			m.control.RollbackTrades(trades, book)
			return openingPrice, nil
		}
		m.control.ApplyTrade(t, book)
		trades = append(trades, t)
	}
	return openingPrice, trades
}

func hasOrderForAuction(book *OrderBook) bool {
	return book.HasOrderOfSide(domain.SideBuy) && book.HasOrderOfSide(domain.SideSell)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
