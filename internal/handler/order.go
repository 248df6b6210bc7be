package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/engine"
	"github.com/veloxchange/velox/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	OrderID                  int64  `json:"order_id"`
	Symbol                   string `json:"symbol"`
	Side                     string `json:"side"`
	Kind                     string `json:"kind"`
	Quantity                 int    `json:"quantity"`
	Price                    int    `json:"price"`
	BrokerID                 string `json:"broker_id"`
	ShareholderID            string `json:"shareholder_id"`
	MinimumExecutionQuantity int    `json:"minimum_execution_quantity"`
	PeakSize                 int    `json:"peak_size"`
	StopPrice                int    `json:"stop_price"`
}

// updateOrderRequest is the JSON request body for PUT /orders/{order_id}.
type updateOrderRequest struct {
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	PeakSize  int    `json:"peak_size"`
	StopPrice int    `json:"stop_price"`
}

// tradeResponse is a single trade in a match result or tape response.
type tradeResponse struct {
	TradeID     string `json:"trade_id"`
	Symbol      string `json:"symbol"`
	Price       int    `json:"price"`
	Quantity    int    `json:"quantity"`
	BuyOrderID  int64  `json:"buy_order_id"`
	SellOrderID int64  `json:"sell_order_id"`
	ExecutedAt  string `json:"executed_at"`
}

// orderResponse summarizes the (possibly mutated) originating order.
type orderResponse struct {
	OrderID   int64  `json:"order_id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Kind      string `json:"kind"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
	Status    string `json:"status"`
	Displayed *int   `json:"displayed,omitempty"`
	StopPrice *int   `json:"stop_price,omitempty"`
}

// matchResultResponse is the JSON response for submit and update.
type matchResultResponse struct {
	Outcome string          `json:"outcome"`
	Order   orderResponse   `json:"order"`
	Trades  []tradeResponse `json:"trades"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.orderSvc.SubmitOrder(service.SubmitOrderRequest{
		OrderID:                  req.OrderID,
		Symbol:                   req.Symbol,
		Side:                     domain.Side(req.Side),
		Kind:                     domain.OrderKind(req.Kind),
		Quantity:                 req.Quantity,
		Price:                    req.Price,
		BrokerID:                 req.BrokerID,
		ShareholderID:            req.ShareholderID,
		MinimumExecutionQuantity: req.MinimumExecutionQuantity,
		PeakSize:                 req.PeakSize,
		StopPrice:                req.StopPrice,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMatchResultResponse(res))
}

// UpdateOrder handles PUT /orders/{order_id}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "order_id must be an integer")
		return
	}

	var req updateOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.orderSvc.UpdateOrder(service.UpdateOrderRequest{
		OrderID:   orderID,
		Symbol:    req.Symbol,
		Side:      domain.Side(req.Side),
		Quantity:  req.Quantity,
		Price:     req.Price,
		PeakSize:  req.PeakSize,
		StopPrice: req.StopPrice,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toMatchResultResponse(res))
}

// DeleteOrder handles DELETE /orders/{order_id}. The addressed symbol
// and side come from required query parameters.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "order_id must be an integer")
		return
	}
	symbol := r.URL.Query().Get("symbol")
	side := r.URL.Query().Get("side")
	if symbol == "" || side == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "symbol and side query parameters are required")
		return
	}

	if err := h.orderSvc.DeleteOrder(symbol, domain.Side(side), orderID); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func toMatchResultResponse(res *engine.MatchResult) matchResultResponse {
	trades := make([]tradeResponse, 0)
	for _, t := range res.AllTrades() {
		trades = append(trades, toTradeResponse(t.Record()))
	}

	o := res.Order
	resp := matchResultResponse{
		Outcome: string(res.Outcome),
		Order: orderResponse{
			OrderID:  o.OrderID,
			Symbol:   o.Symbol,
			Side:     string(o.Side),
			Kind:     string(o.Kind),
			Quantity: o.Quantity,
			Price:    o.Price,
			Status:   string(o.Status),
		},
		Trades: trades,
	}
	if o.Kind == domain.OrderKindIceberg {
		displayed := o.Displayed
		resp.Order.Displayed = &displayed
	}
	if o.Kind == domain.OrderKindStopLimit {
		stopPrice := o.StopPrice
		resp.Order.StopPrice = &stopPrice
	}
	return resp
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		Price:       t.Price,
		Quantity:    t.Quantity,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		ExecutedAt:  t.ExecutedAt.UTC().Format(time.RFC3339Nano),
	}
}
