package service

import (
	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/engine"
	"github.com/veloxchange/velox/internal/store"
)

// MarketPublisher receives executed trades and book updates for
// broadcast. Implementations must not block the caller for long; the
// engine has already committed by the time publication happens.
type MarketPublisher interface {
	PublishTrade(t *domain.Trade)
	PublishDepth(symbol string, bids, asks []engine.PriceLevel)
}

// depthLevels is how many aggregated price levels are broadcast per side.
const depthLevels = 10

// SubmitOrderRequest represents the input for order submission. The
// order id is caller-assigned; entry time priority is assigned by the
// engine on arrival.
type SubmitOrderRequest struct {
	OrderID                  int64
	Symbol                   string
	Side                     domain.Side
	Kind                     domain.OrderKind
	Quantity                 int
	Price                    int
	BrokerID                 string
	ShareholderID            string
	MinimumExecutionQuantity int
	PeakSize                 int
	StopPrice                int
}

// UpdateOrderRequest represents the input for an order update.
type UpdateOrderRequest struct {
	OrderID   int64
	Symbol    string
	Side      domain.Side
	Quantity  int
	Price     int
	PeakSize  int
	StopPrice int
}

// OrderService validates order requests, resolves their participants,
// and drives them through the matching engine. Executed trades are
// appended to the tape and published to the market-data feed.
type OrderService struct {
	securities   *engine.SecurityRegistry
	brokers      *store.BrokerStore
	shareholders *store.ShareholderStore
	trades       *store.TradeStore
	publisher    MarketPublisher // may be nil
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	securities *engine.SecurityRegistry,
	brokers *store.BrokerStore,
	shareholders *store.ShareholderStore,
	trades *store.TradeStore,
	publisher MarketPublisher,
) *OrderService {
	return &OrderService{
		securities:   securities,
		brokers:      brokers,
		shareholders: shareholders,
		trades:       trades,
		publisher:    publisher,
	}
}

// SubmitOrder validates the request, builds the order, and runs it
// through the security's current matching behavior.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (*engine.MatchResult, error) {
	if err := s.validateSubmit(req); err != nil {
		return nil, err
	}

	sec, err := s.securities.Get(req.Symbol)
	if err != nil {
		return nil, err
	}
	if !s.brokers.Exists(req.BrokerID) {
		return nil, domain.ErrBrokerNotFound
	}
	if !s.shareholders.Exists(req.ShareholderID) {
		return nil, domain.ErrShareholderNotFound
	}

	o := &domain.Order{
		OrderID:                  req.OrderID,
		Symbol:                   req.Symbol,
		Side:                     req.Side,
		Kind:                     req.Kind,
		Quantity:                 req.Quantity,
		Price:                    req.Price,
		BrokerID:                 req.BrokerID,
		ShareholderID:            req.ShareholderID,
		Status:                   domain.OrderStatusNew,
		MinimumExecutionQuantity: req.MinimumExecutionQuantity,
		PeakSize:                 req.PeakSize,
		StopPrice:                req.StopPrice,
	}
	o.Replenish()

	res, err := sec.SubmitOrder(o)
	if err != nil {
		return nil, err
	}
	s.recordTrades(req.Symbol, sec, res.AllTrades())
	return res, nil
}

// UpdateOrder validates the new field values and applies the update
// through the security, which decides in-place versus requeue.
func (s *OrderService) UpdateOrder(req UpdateOrderRequest) (*engine.MatchResult, error) {
	if !req.Side.Valid() {
		return nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be positive"}
	}
	if req.Price <= 0 {
		return nil, &domain.ValidationError{Message: "price must be positive"}
	}
	if req.PeakSize < 0 || req.StopPrice < 0 {
		return nil, &domain.ValidationError{Message: "peak_size and stop_price must be non-negative"}
	}

	sec, err := s.securities.Get(req.Symbol)
	if err != nil {
		return nil, err
	}

	res, err := sec.UpdateOrder(engine.UpdateRequest{
		OrderID:   req.OrderID,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		PeakSize:  req.PeakSize,
		StopPrice: req.StopPrice,
	})
	if err != nil {
		return nil, err
	}
	s.recordTrades(req.Symbol, sec, res.AllTrades())
	return res, nil
}

// DeleteOrder removes an order from the addressed side.
func (s *OrderService) DeleteOrder(symbol string, side domain.Side, orderID int64) error {
	if !side.Valid() {
		return &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	sec, err := s.securities.Get(symbol)
	if err != nil {
		return err
	}
	return sec.DeleteOrder(side, orderID)
}

func (s *OrderService) validateSubmit(req SubmitOrderRequest) error {
	switch req.Kind {
	case domain.OrderKindLimit, domain.OrderKindIceberg, domain.OrderKindStopLimit:
	default:
		return &domain.ValidationError{
			Message: "kind must be one of: limit, iceberg, stop_limit",
		}
	}
	if !req.Side.Valid() {
		return &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	if req.OrderID <= 0 {
		return &domain.ValidationError{Message: "order_id must be positive"}
	}
	if req.Quantity <= 0 {
		return &domain.ValidationError{Message: "quantity must be positive"}
	}
	if req.Price <= 0 {
		return &domain.ValidationError{Message: "price must be positive"}
	}
	if req.MinimumExecutionQuantity < 0 || req.MinimumExecutionQuantity > req.Quantity {
		return &domain.ValidationError{
			Message: "minimum_execution_quantity must be between 0 and quantity",
		}
	}

	switch req.Kind {
	case domain.OrderKindIceberg:
		if req.PeakSize <= 0 {
			return &domain.ValidationError{Message: "peak_size must be positive for iceberg orders"}
		}
		if req.StopPrice != 0 {
			return &domain.ValidationError{Message: "stop_price is not valid for iceberg orders"}
		}
	case domain.OrderKindStopLimit:
		if req.StopPrice <= 0 {
			return domain.ErrInvalidStopPrice
		}
		if req.PeakSize != 0 {
			return &domain.ValidationError{Message: "peak_size is not valid for stop_limit orders"}
		}
		if req.MinimumExecutionQuantity != 0 {
			return &domain.ValidationError{
				Message: "minimum_execution_quantity is not valid for stop_limit orders",
			}
		}
	default:
		if req.PeakSize != 0 || req.StopPrice != 0 {
			return &domain.ValidationError{
				Message: "peak_size and stop_price are not valid for limit orders",
			}
		}
	}
	return nil
}

// recordTrades appends executed trades to the tape and pushes the trade
// and refreshed depth to the feed.
func (s *OrderService) recordTrades(symbol string, sec *engine.Security, trades []*engine.Trade) {
	if len(trades) == 0 {
		return
	}
	for _, t := range trades {
		rec := t.Record()
		s.trades.Append(symbol, rec)
		if s.publisher != nil {
			s.publisher.PublishTrade(rec)
		}
	}
	if s.publisher != nil {
		s.publisher.PublishDepth(symbol,
			sec.Depth(domain.SideBuy, depthLevels),
			sec.Depth(domain.SideSell, depthLevels))
	}
}
