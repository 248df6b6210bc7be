package service

import (
	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/engine"
	"github.com/veloxchange/velox/internal/store"
)

// BookView is the aggregated two-sided view of an instrument's book.
type BookView struct {
	Symbol         string
	State          engine.SecurityState
	LastTradePrice int
	Bids           []engine.PriceLevel
	Asks           []engine.PriceLevel
}

// AuctionView is the indicative auction state of an instrument.
type AuctionView struct {
	Symbol           string
	OpeningPrice     int
	TradableQuantity int
}

// MarketService handles security registration, state transitions, and
// market-data queries.
type MarketService struct {
	securities *engine.SecurityRegistry
	trades     *store.TradeStore
	matcher    *engine.Matcher
	control    *engine.MatchingControl
	publisher  MarketPublisher // may be nil
}

// NewMarketService creates a new MarketService with the given dependencies.
func NewMarketService(
	securities *engine.SecurityRegistry,
	trades *store.TradeStore,
	matcher *engine.Matcher,
	control *engine.MatchingControl,
	publisher MarketPublisher,
) *MarketService {
	return &MarketService{
		securities: securities,
		trades:     trades,
		matcher:    matcher,
		control:    control,
		publisher:  publisher,
	}
}

// RegisterSecurity validates and registers a new instrument in
// continuous state with the given reference last trade price.
func (s *MarketService) RegisterSecurity(symbol string, lastTradePrice int) (*engine.Security, error) {
	if !symbolRegex.MatchString(symbol) {
		return nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if lastTradePrice < 0 {
		return nil, &domain.ValidationError{
			Message: "last_trade_price must be non-negative",
		}
	}

	sec := engine.NewSecurity(symbol, lastTradePrice, s.matcher, s.control)
	if err := s.securities.Create(sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// ChangeState transitions the instrument's matching state. Leaving
// auction executes the auction; the resulting batch is recorded on the
// tape, published, and returned.
func (s *MarketService) ChangeState(symbol string, newState engine.SecurityState) ([]*domain.Trade, error) {
	if !newState.Valid() {
		return nil, &domain.ValidationError{
			Message: "state must be 'continuous' or 'auction'",
		}
	}
	sec, err := s.securities.Get(symbol)
	if err != nil {
		return nil, err
	}

	trades := sec.ChangeState(newState)
	records := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		rec := t.Record()
		s.trades.Append(symbol, rec)
		if s.publisher != nil {
			s.publisher.PublishTrade(rec)
		}
		records = append(records, rec)
	}
	if s.publisher != nil && len(records) > 0 {
		s.publisher.PublishDepth(symbol,
			sec.Depth(domain.SideBuy, depthLevels),
			sec.Depth(domain.SideSell, depthLevels))
	}
	return records, nil
}

// Book returns the instrument's aggregated visible depth.
func (s *MarketService) Book(symbol string) (*BookView, error) {
	sec, err := s.securities.Get(symbol)
	if err != nil {
		return nil, err
	}
	return &BookView{
		Symbol:         symbol,
		State:          sec.State(),
		LastTradePrice: sec.LastTradePrice(),
		Bids:           sec.Depth(domain.SideBuy, depthLevels),
		Asks:           sec.Depth(domain.SideSell, depthLevels),
	}, nil
}

// Auction returns the indicative opening price and tradable quantity.
func (s *MarketService) Auction(symbol string) (*AuctionView, error) {
	sec, err := s.securities.Get(symbol)
	if err != nil {
		return nil, err
	}
	openingPrice, tradable := sec.IndicativeAuction()
	return &AuctionView{
		Symbol:           symbol,
		OpeningPrice:     openingPrice,
		TradableQuantity: tradable,
	}, nil
}

// Tape returns the instrument's chronological trade history.
func (s *MarketService) Tape(symbol string) ([]*domain.Trade, error) {
	if _, err := s.securities.Get(symbol); err != nil {
		return nil, err
	}
	return s.trades.GetBySymbol(symbol), nil
}
