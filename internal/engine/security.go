package engine

import (
	"sync"

	"github.com/veloxchange/velox/internal/domain"
)

// SecurityState selects the matching behavior for an instrument.
type SecurityState string

const (
	StateContinuous SecurityState = "continuous"
	StateAuction    SecurityState = "auction"
)

// Valid returns true for the two recognized states.
func (s SecurityState) Valid() bool {
	return s == StateContinuous || s == StateAuction
}

// Security owns one instrument: its order book, its last trade price,
// and its current matching state. All operations against the instrument
// execute under a single mutex, so a request runs to a terminal outcome
// before the next one is observed.
type Security struct {
	symbol         string
	mu             sync.Mutex
	state          SecurityState
	lastTradePrice int
	book           *OrderBook
	matcher        *Matcher
	control        *MatchingControl
}

// NewSecurity creates a Security in continuous state with the given
// reference last trade price.
func NewSecurity(symbol string, lastTradePrice int, matcher *Matcher, control *MatchingControl) *Security {
	return &Security{
		symbol:         symbol,
		state:          StateContinuous,
		lastTradePrice: lastTradePrice,
		book:           NewOrderBook(symbol),
		matcher:        matcher,
		control:        control,
	}
}

// Symbol returns the instrument identifier.
func (s *Security) Symbol() string { return s.symbol }

// State returns the current matching state.
func (s *Security) State() SecurityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastTradePrice returns the instrument's last trade price.
func (s *Security) LastTradePrice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTradePrice
}

// SubmitOrder runs a new order through the behavior for the current
// state: continuous matching, auction admission, or stop-order parking.
// It returns domain.ErrDuplicateOrderID when the id is already live on
// the addressed side.
func (s *Security) SubmitOrder(o *domain.Order) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.book.FindByOrderID(o.Side, o.OrderID); err == nil {
		return nil, domain.ErrDuplicateOrderID
	}
	o.EntrySeq = s.book.NextSeq()
	return s.processOrder(o), nil
}

// processOrder admits an order under the current state. Callers assign
// the entry sequence: every admission through here counts as a fresh
// arrival.
func (s *Security) processOrder(o *domain.Order) *MatchResult {
	if o.Kind == domain.OrderKindStopLimit && !o.IsTriggered(s.lastTradePrice) {
		return s.parkStopOrder(o)
	}

	if s.state == StateAuction {
		return s.admitForAuction(o)
	}

	res := s.matcher.ContinuousExecuting(o, s.book)
	if len(res.Trades) > 0 {
		s.lastTradePrice = res.Trades[len(res.Trades)-1].Price
		res.Activations = s.activateStopOrders()
	}
	return res
}

// parkStopOrder admits an untriggered stop-limit order into the pool,
// holding the buy-side reservation while it waits.
func (s *Security) parkStopOrder(o *domain.Order) *MatchResult {
	if r := s.control.CheckBeforeMatching(o, s.book); r != ControlOK {
		return resultFrom(r, o)
	}
	if r := s.control.CheckForQueueing(o); r != ControlOK {
		return resultFrom(r, o)
	}
	s.control.ReserveForQueueing(o)
	s.book.ParkStop(o)
	return &MatchResult{Outcome: OutcomeAccepted, Order: o}
}

// admitForAuction runs admission checks and enqueues without matching;
// execution waits for the transition out of auction state.
func (s *Security) admitForAuction(o *domain.Order) *MatchResult {
	if r := s.control.CheckBeforeMatching(o, s.book); r != ControlOK {
		return resultFrom(r, o)
	}
	if r := s.control.CheckForQueueing(o); r != ControlOK {
		return resultFrom(r, o)
	}
	s.control.ReserveForQueueing(o)
	o.Replenish()
	s.book.Enqueue(o)
	return &MatchResult{Outcome: OutcomeAccepted, Order: o}
}

// activateStopOrders drains the stop pool iteratively: each triggered
// order is released from its parking reservation and fed back through
// the current behavior. Trades from an activation can move the last
// trade price and trigger further stops; the loop runs until no parked
// order qualifies. Never recursive.
func (s *Security) activateStopOrders() []*MatchResult {
	var results []*MatchResult
	for {
		o := s.book.NextTriggeredStop(s.lastTradePrice)
		if o == nil {
			break
		}
		s.control.ReleaseOnRemoval(o)
		// Activation is a new arrival: the order queues behind existing
		// orders at its price, not at its parking-time position.
		o.EntrySeq = s.book.NextSeq()

		if s.state == StateAuction {
			results = append(results, s.admitForAuction(o))
			continue
		}

		res := s.matcher.ContinuousExecuting(o, s.book)
		if len(res.Trades) > 0 {
			s.lastTradePrice = res.Trades[len(res.Trades)-1].Price
		}
		results = append(results, res)
	}
	return results
}

// UpdateRequest carries the new field values for an order update. Fields
// that do not apply to the order's kind are ignored.
type UpdateRequest struct {
	OrderID   int64
	Side      domain.Side
	Quantity  int
	Price     int
	PeakSize  int
	StopPrice int
}

// UpdateOrder applies an update in place when it cannot improve the
// order's standing (pure quantity or peak decrease), releasing any freed
// reservation immediately. Any price change, quantity increase, peak
// increase, or pending-stop-price change removes the order and re-admits
// it as new; if re-admission fails the original order is restored with
// its original reservation and queue position.
func (s *Security) UpdateOrder(req UpdateRequest) (*MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.book.FindByOrderID(req.Side, req.OrderID)
	if err != nil {
		return nil, err
	}
	parked := s.book.IsParked(o.OrderID)

	losesPriority := req.Price != o.Price ||
		req.Quantity > o.Quantity ||
		(o.Kind == domain.OrderKindIceberg && req.PeakSize > o.PeakSize) ||
		(parked && req.StopPrice != o.StopPrice)

	if !losesPriority {
		s.updateInPlace(o, req)
		return &MatchResult{Outcome: OutcomeAccepted, Order: o}, nil
	}

	snap := o.Snapshot()
	s.control.ReleaseOnRemoval(o)
	if parked {
		_, _ = s.book.RemoveStop(o.Side, o.OrderID)
	} else {
		_, _ = s.book.Remove(o.Side, o.OrderID)
	}

	o.Quantity = req.Quantity
	o.Price = req.Price
	if o.Kind == domain.OrderKindIceberg {
		o.PeakSize = req.PeakSize
		o.Replenish()
	}
	if o.Kind == domain.OrderKindStopLimit {
		o.StopPrice = req.StopPrice
	}
	// Losing priority means losing time priority too. The snapshot holds
	// the old sequence for the failure path.
	o.EntrySeq = s.book.NextSeq()

	res := s.processOrder(o)
	if res.Outcome.Rejected() {
		o.RestoreFrom(snap)
		s.control.ReserveForQueueing(o)
		if parked {
			s.book.ParkStop(o)
		} else {
			s.book.Restore(o)
		}
	}
	return res, nil
}

// updateInPlace applies a decrease without touching queue position. The
// buy reservation is re-based on the new value, returning the freed
// portion to the broker.
func (s *Security) updateInPlace(o *domain.Order, req UpdateRequest) {
	if o.Side == domain.SideBuy {
		s.control.ReleaseOnRemoval(o)
	}
	o.Quantity = req.Quantity
	if o.Kind == domain.OrderKindIceberg {
		o.PeakSize = req.PeakSize
		limit := o.PeakSize
		if o.Quantity < limit {
			limit = o.Quantity
		}
		if o.Displayed > limit {
			o.Displayed = limit
		}
	}
	if o.Side == domain.SideBuy {
		s.control.ReserveForQueueing(o)
	}
}

// DeleteOrder removes an order from the addressed side's queue or stop
// pool, releasing any buy reservation. Returns domain.ErrOrderNotFound
// when absent.
func (s *Security) DeleteOrder(side domain.Side, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, err := s.book.Remove(side, orderID); err == nil {
		s.control.ReleaseOnRemoval(o)
		o.Status = domain.OrderStatusCancelled
		return nil
	}
	if o, err := s.book.RemoveStop(side, orderID); err == nil {
		s.control.ReleaseOnRemoval(o)
		o.Status = domain.OrderStatusCancelled
		return nil
	}
	return domain.ErrOrderNotFound
}

// ChangeState moves the instrument to a new matching state. Leaving
// auction first executes the auction at the discovered opening price;
// the executed trades (and trades of any stop orders they activate) are
// returned as one batch. The transition happens whether or not any
// trade occurred.
func (s *Security) ChangeState(newState SecurityState) []*Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAuction {
		s.state = newState
		return nil
	}

	openingPrice, trades := s.matcher.AuctionExecuting(s.book, s.lastTradePrice)
	s.state = newState

	all := append([]*Trade(nil), trades...)
	if len(trades) > 0 {
		s.lastTradePrice = openingPrice
		for _, res := range s.activateStopOrders() {
			all = append(all, res.AllTrades()...)
		}
	}
	return all
}

// IndicativeAuction returns the opening price and tradable quantity the
// auction would produce right now.
func (s *Security) IndicativeAuction() (openingPrice, tradableQuantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	openingPrice = s.matcher.CalcOpeningAuctionPrice(s.book, s.lastTradePrice)
	tradableQuantity = s.matcher.TradableQuantityAt(s.book, openingPrice)
	return openingPrice, tradableQuantity
}

// HasOrderOfSide reports whether any order rests on the given side.
func (s *Security) HasOrderOfSide(side domain.Side) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.HasOrderOfSide(side)
}

// FindByOrderID locates a live order on the addressed side.
func (s *Security) FindByOrderID(side domain.Side, orderID int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.FindByOrderID(side, orderID)
}

// TotalSellQuantityByShareholder sums the shareholder's resting sell
// quantity on this instrument.
func (s *Security) TotalSellQuantityByShareholder(shareholderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.TotalSellQuantityByShareholder(shareholderID)
}

// Depth returns up to n aggregated visible price levels for a side.
func (s *Security) Depth(side domain.Side, n int) []PriceLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Depth(side, n)
}
