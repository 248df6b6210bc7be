package domain

import "time"

// Trade is the reported record of a matched execution between a buy and a
// sell order. It is immutable once produced; the engine's transactional
// bookkeeping lives on the engine side, not here.
type Trade struct {
	TradeID     string
	Symbol      string
	Price       int
	Quantity    int
	BuyOrderID  int64
	SellOrderID int64
	ExecutedAt  time.Time
}
