package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloxchange/velox/internal/engine"
	"github.com/veloxchange/velox/internal/service"
)

// MarketHandler handles HTTP requests for security and market-data
// endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

type registerSecurityRequest struct {
	Symbol         string `json:"symbol"`
	LastTradePrice int    `json:"last_trade_price"`
}

type securityResponse struct {
	Symbol         string `json:"symbol"`
	State          string `json:"state"`
	LastTradePrice int    `json:"last_trade_price"`
}

// RegisterSecurity handles POST /securities.
func (h *MarketHandler) RegisterSecurity(w http.ResponseWriter, r *http.Request) {
	var req registerSecurityRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sec, err := h.marketSvc.RegisterSecurity(req.Symbol, req.LastTradePrice)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, securityResponse{
		Symbol:         sec.Symbol(),
		State:          string(sec.State()),
		LastTradePrice: sec.LastTradePrice(),
	})
}

type changeStateRequest struct {
	State string `json:"state"`
}

type changeStateResponse struct {
	Symbol string          `json:"symbol"`
	State  string          `json:"state"`
	Trades []tradeResponse `json:"trades"`
}

// ChangeState handles PUT /securities/{symbol}/state.
func (h *MarketHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var req changeStateRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	trades, err := h.marketSvc.ChangeState(symbol, engine.SecurityState(req.State))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := changeStateResponse{Symbol: symbol, State: req.State, Trades: make([]tradeResponse, 0, len(trades))}
	for _, t := range trades {
		resp.Trades = append(resp.Trades, toTradeResponse(t))
	}
	WriteJSON(w, http.StatusOK, resp)
}

type priceLevelResponse struct {
	Price      int `json:"price"`
	Quantity   int `json:"quantity"`
	OrderCount int `json:"order_count"`
}

type bookResponse struct {
	Symbol         string               `json:"symbol"`
	State          string               `json:"state"`
	LastTradePrice int                  `json:"last_trade_price"`
	Bids           []priceLevelResponse `json:"bids"`
	Asks           []priceLevelResponse `json:"asks"`
}

// GetBook handles GET /securities/{symbol}/book.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	view, err := h.marketSvc.Book(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, bookResponse{
		Symbol:         view.Symbol,
		State:          string(view.State),
		LastTradePrice: view.LastTradePrice,
		Bids:           toPriceLevels(view.Bids),
		Asks:           toPriceLevels(view.Asks),
	})
}

type auctionResponse struct {
	Symbol           string `json:"symbol"`
	OpeningPrice     int    `json:"opening_price"`
	TradableQuantity int    `json:"tradable_quantity"`
}

// GetAuction handles GET /securities/{symbol}/auction.
func (h *MarketHandler) GetAuction(w http.ResponseWriter, r *http.Request) {
	view, err := h.marketSvc.Auction(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, auctionResponse{
		Symbol:           view.Symbol,
		OpeningPrice:     view.OpeningPrice,
		TradableQuantity: view.TradableQuantity,
	})
}

// GetTape handles GET /securities/{symbol}/trades.
func (h *MarketHandler) GetTape(w http.ResponseWriter, r *http.Request) {
	trades, err := h.marketSvc.Tape(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	resp := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		resp = append(resp, toTradeResponse(t))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func toPriceLevels(levels []engine.PriceLevel) []priceLevelResponse {
	out := make([]priceLevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, priceLevelResponse{Price: l.Price, Quantity: l.Quantity, OrderCount: l.OrderCount})
	}
	return out
}
