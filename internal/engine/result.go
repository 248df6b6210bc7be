package engine

import "github.com/veloxchange/velox/internal/domain"

// Outcome is the terminal code of a matching attempt. Rejection outcomes
// guarantee that no partial state change is observable: every trade
// performed during the attempt was rolled back before the code was
// produced.
type Outcome string

const (
	// OutcomeExecuted covers matched trades and/or a resting remainder.
	OutcomeExecuted Outcome = "executed"
	// OutcomeAccepted marks an order admitted without matching (auction
	// enqueue or a parked stop order).
	OutcomeAccepted           Outcome = "accepted"
	OutcomeNotEnoughCredit    Outcome = "not_enough_credit"
	OutcomeNotEnoughPositions Outcome = "not_enough_positions"
	OutcomeNotEnoughExecution Outcome = "not_enough_execution"
)

// Rejected reports whether the outcome is a rejection code.
func (o Outcome) Rejected() bool {
	return o != OutcomeExecuted && o != OutcomeAccepted
}

// MatchResult is the immutable outcome of one request: the code, the
// trades executed for the originating order, the (possibly mutated)
// order itself, and the results of any stop orders the request's trades
// activated.
type MatchResult struct {
	Outcome     Outcome
	Trades      []*Trade
	Order       *domain.Order
	Activations []*MatchResult
}

// AllTrades flattens the request's own trades and every activation's
// trades into chronological order.
func (r *MatchResult) AllTrades() []*Trade {
	trades := make([]*Trade, 0, len(r.Trades))
	trades = append(trades, r.Trades...)
	for _, a := range r.Activations {
		trades = append(trades, a.AllTrades()...)
	}
	return trades
}

// resultFrom maps a failed control result to a rejection MatchResult.
func resultFrom(r ControlResult, o *domain.Order) *MatchResult {
	var outcome Outcome
	switch r {
	case ControlNotEnoughCredit:
		outcome = OutcomeNotEnoughCredit
	case ControlNotEnoughPositions:
		outcome = OutcomeNotEnoughPositions
	case ControlNotEnoughExecution:
		outcome = OutcomeNotEnoughExecution
	}
	return &MatchResult{Outcome: outcome, Order: o}
}
