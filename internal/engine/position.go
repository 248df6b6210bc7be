package engine

import (
	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/store"
)

// PositionControl bounds a shareholder's resting sell exposure by their
// held position and moves shares between shareholders at settlement.
type PositionControl struct {
	shareholders *store.ShareholderStore
}

// NewPositionControl creates a PositionControl over the shareholder
// registry.
func NewPositionControl(shareholders *store.ShareholderStore) *PositionControl {
	return &PositionControl{shareholders: shareholders}
}

// CheckPosition admits a sell order only if the shareholder's held
// position covers their sells already resting on this book plus the new
// order's quantity. Buy orders always pass; positions mutate only at
// trade time.
func (c *PositionControl) CheckPosition(o *domain.Order, book *OrderBook) ControlResult {
	if o.Side != domain.SideSell {
		return ControlOK
	}
	sh, _ := c.shareholders.Get(o.ShareholderID)
	resting := book.TotalSellQuantityByShareholder(o.ShareholderID)
	sh.Mu.Lock()
	defer sh.Mu.Unlock()
	if !sh.HasEnoughPosition(o.Symbol, resting+o.Quantity) {
		return ControlNotEnoughPositions
	}
	return ControlOK
}

// ApplyTrade moves the traded quantity from the seller's position to the
// buyer's. Locks are taken sequentially so a self-trading shareholder
// cannot deadlock.
func (c *PositionControl) ApplyTrade(t *Trade) {
	seller, _ := c.shareholders.Get(t.Sell.ShareholderID)
	seller.Mu.Lock()
	seller.DecPosition(t.Symbol, t.Quantity)
	seller.Mu.Unlock()

	buyer, _ := c.shareholders.Get(t.Buy.ShareholderID)
	buyer.Mu.Lock()
	buyer.IncPosition(t.Symbol, t.Quantity)
	buyer.Mu.Unlock()
}

// RollbackTrade reverses ApplyTrade exactly.
func (c *PositionControl) RollbackTrade(t *Trade) {
	buyer, _ := c.shareholders.Get(t.Buy.ShareholderID)
	buyer.Mu.Lock()
	buyer.DecPosition(t.Symbol, t.Quantity)
	buyer.Mu.Unlock()

	seller, _ := c.shareholders.Get(t.Sell.ShareholderID)
	seller.Mu.Lock()
	seller.IncPosition(t.Symbol, t.Quantity)
	seller.Mu.Unlock()
}
