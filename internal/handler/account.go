package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloxchange/velox/internal/service"
)

// AccountHandler handles HTTP requests for broker and shareholder
// endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

type registerBrokerRequest struct {
	BrokerID string `json:"broker_id"`
	Credit   int64  `json:"credit"`
}

type brokerResponse struct {
	BrokerID string `json:"broker_id"`
	Credit   int64  `json:"credit"`
}

// RegisterBroker handles POST /brokers.
func (h *AccountHandler) RegisterBroker(w http.ResponseWriter, r *http.Request) {
	var req registerBrokerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	b, err := h.accountSvc.RegisterBroker(req.BrokerID, req.Credit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, brokerResponse{BrokerID: b.BrokerID, Credit: b.Credit})
}

// GetBroker handles GET /brokers/{broker_id}.
func (h *AccountHandler) GetBroker(w http.ResponseWriter, r *http.Request) {
	b, err := h.accountSvc.GetBroker(chi.URLParam(r, "broker_id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	b.Mu.Lock()
	resp := brokerResponse{BrokerID: b.BrokerID, Credit: b.Credit}
	b.Mu.Unlock()
	WriteJSON(w, http.StatusOK, resp)
}

type registerShareholderRequest struct {
	ShareholderID string         `json:"shareholder_id"`
	Positions     map[string]int `json:"positions"`
}

type shareholderResponse struct {
	ShareholderID string         `json:"shareholder_id"`
	Positions     map[string]int `json:"positions"`
}

// RegisterShareholder handles POST /shareholders.
func (h *AccountHandler) RegisterShareholder(w http.ResponseWriter, r *http.Request) {
	var req registerShareholderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sh, err := h.accountSvc.RegisterShareholder(req.ShareholderID, req.Positions)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, shareholderResponse{
		ShareholderID: sh.ShareholderID,
		Positions:     sh.Positions,
	})
}

// GetShareholder handles GET /shareholders/{shareholder_id}.
func (h *AccountHandler) GetShareholder(w http.ResponseWriter, r *http.Request) {
	sh, err := h.accountSvc.GetShareholder(chi.URLParam(r, "shareholder_id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	sh.Mu.Lock()
	positions := make(map[string]int, len(sh.Positions))
	for sym, qty := range sh.Positions {
		positions[sym] = qty
	}
	sh.Mu.Unlock()
	WriteJSON(w, http.StatusOK, shareholderResponse{
		ShareholderID: sh.ShareholderID,
		Positions:     positions,
	})
}
