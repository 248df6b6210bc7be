package engine

import (
	"testing"
	"time"

	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/store"
)

// newTestEngine creates a matcher and control chain over fresh registries.
func newTestEngine() (*Matcher, *MatchingControl, *store.BrokerStore, *store.ShareholderStore) {
	brokers := store.NewBrokerStore()
	shareholders := store.NewShareholderStore()
	control := NewMatchingControl(brokers, shareholders)
	return NewMatcher(control), control, brokers, shareholders
}

// registerBroker creates and stores a broker with the given credit.
func registerBroker(t *testing.T, bs *store.BrokerStore, id string, credit int64) *domain.Broker {
	t.Helper()
	b := &domain.Broker{BrokerID: id, Credit: credit, CreatedAt: time.Now()}
	if err := bs.Create(b); err != nil {
		t.Fatalf("create broker %s: %v", id, err)
	}
	return b
}

// registerShareholder creates and stores a shareholder with the given positions.
func registerShareholder(t *testing.T, ss *store.ShareholderStore, id string, positions map[string]int) *domain.Shareholder {
	t.Helper()
	if positions == nil {
		positions = make(map[string]int)
	}
	sh := &domain.Shareholder{ShareholderID: id, Positions: positions, CreatedAt: time.Now()}
	if err := ss.Create(sh); err != nil {
		t.Fatalf("create shareholder %s: %v", id, err)
	}
	return sh
}

// newLimit builds a limit order ready for submission.
func newLimit(id int64, side domain.Side, price, qty int, brokerID, shareholderID string) *domain.Order {
	return &domain.Order{
		OrderID:       id,
		Symbol:        "VLX",
		Side:          side,
		Kind:          domain.OrderKindLimit,
		Quantity:      qty,
		Price:         price,
		BrokerID:      brokerID,
		ShareholderID: shareholderID,
		Status:        domain.OrderStatusNew,
	}
}

// newIceberg builds an iceberg order with its displayed slice filled.
func newIceberg(id int64, side domain.Side, price, qty, peak int, brokerID, shareholderID string) *domain.Order {
	o := &domain.Order{
		OrderID:       id,
		Symbol:        "VLX",
		Side:          side,
		Kind:          domain.OrderKindIceberg,
		Quantity:      qty,
		Price:         price,
		BrokerID:      brokerID,
		ShareholderID: shareholderID,
		Status:        domain.OrderStatusNew,
		PeakSize:      peak,
	}
	o.Replenish()
	return o
}

// submit assigns an entry sequence and runs the order through continuous
// matching on the given book.
func submit(m *Matcher, book *OrderBook, o *domain.Order) *MatchResult {
	o.EntrySeq = book.NextSeq()
	return m.ContinuousExecuting(o, book)
}

func TestContinuous_NoMatchRestsOnBook(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "b1", 100000)
	registerShareholder(t, ss, "sh1", nil)
	book := NewOrderBook("VLX")

	res := submit(m, book, newLimit(1, domain.SideBuy, 500, 10, "b1", "sh1"))
	if res.Outcome != OutcomeExecuted {
		t.Fatalf("outcome = %s, want executed", res.Outcome)
	}
	if len(res.Trades) != 0 {
		t.Errorf("trades = %d, want 0", len(res.Trades))
	}
	if res.Order.Status != domain.OrderStatusQueued {
		t.Errorf("status = %s, want queued", res.Order.Status)
	}
	if book.OrderCount(domain.SideBuy) != 1 {
		t.Errorf("buy count = %d, want 1", book.OrderCount(domain.SideBuy))
	}

	// Resting buy holds a reservation for its full value.
	b, _ := bs.Get("b1")
	if b.Credit != 100000-5000 {
		t.Errorf("credit = %d, want 95000 after reservation", b.Credit)
	}
}

func TestContinuous_FullMatchAtRestingPrice(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 100000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 10})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 10, "seller", "shs"))

	// Incoming buy at 520 trades at the resting order's price 500.
	res := submit(m, book, newLimit(2, domain.SideBuy, 520, 10, "buyer", "shb"))
	if res.Outcome != OutcomeExecuted {
		t.Fatalf("outcome = %s, want executed", res.Outcome)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(res.Trades))
	}
	if res.Trades[0].Price != 500 {
		t.Errorf("trade price = %d, want resting price 500", res.Trades[0].Price)
	}
	if res.Order.Status != domain.OrderStatusDone {
		t.Errorf("incoming status = %s, want done", res.Order.Status)
	}

	// Incoming buyer is charged at the trade price, not its limit.
	buyer, _ := bs.Get("buyer")
	if buyer.Credit != 100000-5000 {
		t.Errorf("buyer credit = %d, want 95000", buyer.Credit)
	}
	seller, _ := bs.Get("seller")
	if seller.Credit != 5000 {
		t.Errorf("seller credit = %d, want 5000", seller.Credit)
	}

	shb, _ := ss.Get("shb")
	if shb.Positions["VLX"] != 10 {
		t.Errorf("buyer position = %d, want 10", shb.Positions["VLX"])
	}
	shs, _ := ss.Get("shs")
	if shs.Positions["VLX"] != 0 {
		t.Errorf("seller position = %d, want 0", shs.Positions["VLX"])
	}

	if book.OrderCount(domain.SideSell) != 0 {
		t.Errorf("sell count = %d, want 0", book.OrderCount(domain.SideSell))
	}
}

func TestContinuous_PartialMatchRemainderRests(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 100000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 5})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 5, "seller", "shs"))

	res := submit(m, book, newLimit(2, domain.SideBuy, 500, 12, "buyer", "shb"))
	if res.Outcome != OutcomeExecuted {
		t.Fatalf("outcome = %s, want executed", res.Outcome)
	}
	if res.Order.Quantity != 7 {
		t.Errorf("remaining = %d, want 7", res.Order.Quantity)
	}
	if res.Order.Status != domain.OrderStatusQueued {
		t.Errorf("status = %s, want queued", res.Order.Status)
	}

	// 5 × 500 settled, 7 × 500 reserved for the remainder.
	buyer, _ := bs.Get("buyer")
	if buyer.Credit != 100000-2500-3500 {
		t.Errorf("buyer credit = %d, want 94000", buyer.Credit)
	}
}

func TestContinuous_PriceTimePriorityAcrossLevels(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 1000000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 30})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 520, 10, "seller", "shs"))
	submit(m, book, newLimit(2, domain.SideSell, 500, 10, "seller", "shs"))
	submit(m, book, newLimit(3, domain.SideSell, 500, 10, "seller", "shs"))

	res := submit(m, book, newLimit(4, domain.SideBuy, 520, 30, "buyer", "shb"))
	if len(res.Trades) != 3 {
		t.Fatalf("trades = %d, want 3", len(res.Trades))
	}
	// Best price first, then earlier entry at the same price.
	if res.Trades[0].Sell.OrderID != 2 || res.Trades[1].Sell.OrderID != 3 || res.Trades[2].Sell.OrderID != 1 {
		t.Errorf("fill order = %d,%d,%d, want 2,3,1",
			res.Trades[0].Sell.OrderID, res.Trades[1].Sell.OrderID, res.Trades[2].Sell.OrderID)
	}
	if res.Trades[0].Price != 500 || res.Trades[2].Price != 520 {
		t.Errorf("trade prices = %d..%d, want 500..520", res.Trades[0].Price, res.Trades[2].Price)
	}
}

// Incoming sell sweeps a resting iceberg through its replenish cycles and
// then the next level down, leaving its remainder resting.
func TestContinuous_SellSweepsIcebergThenNextLevel(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 1000000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 60})
	book := NewOrderBook("VLX")

	for i, price := range []int{100, 200, 300, 400} {
		submit(m, book, newLimit(int64(i+1), domain.SideBuy, price, 10, "buyer", "shb"))
	}
	submit(m, book, newIceberg(5, domain.SideBuy, 500, 45, 10, "buyer", "shb"))

	buyerBefore, _ := bs.Get("buyer")
	creditAfterReservations := buyerBefore.Credit

	res := submit(m, book, newLimit(6, domain.SideSell, 400, 60, "seller", "shs"))
	if res.Outcome != OutcomeExecuted {
		t.Fatalf("outcome = %s, want executed", res.Outcome)
	}

	executed := 0
	for _, tr := range res.Trades {
		executed += tr.Quantity
	}
	if executed != 55 {
		t.Errorf("executed = %d, want 55 (45 at 500 + 10 at 400)", executed)
	}
	if res.Order.Quantity != 5 {
		t.Errorf("remainder = %d, want 5", res.Order.Quantity)
	}
	if res.Order.Status != domain.OrderStatusQueued {
		t.Errorf("remainder status = %s, want queued", res.Order.Status)
	}
	if best := book.BestOrder(domain.SideSell); best == nil || best.OrderID != 6 || best.Price != 400 {
		t.Errorf("best sell = %+v, want remainder of order 6 at 400", best)
	}

	// Exhausted iceberg is removed, not replenished.
	if _, err := book.FindByOrderID(domain.SideBuy, 5); err == nil {
		t.Error("iceberg should be removed from the book")
	}

	seller, _ := bs.Get("seller")
	if seller.Credit != 45*500+10*400 {
		t.Errorf("seller credit = %d, want 26500", seller.Credit)
	}
	// Resting buyers' reservations were consumed exactly, nothing refunded.
	buyerAfter, _ := bs.Get("buyer")
	if buyerAfter.Credit != creditAfterReservations {
		t.Errorf("buyer credit = %d, want %d (reservations consumed in place)",
			buyerAfter.Credit, creditAfterReservations)
	}

	shb, _ := ss.Get("shb")
	if shb.Positions["VLX"] != 55 {
		t.Errorf("buyer position = %d, want 55", shb.Positions["VLX"])
	}
	shs, _ := ss.Get("shs")
	if shs.Positions["VLX"] != 5 {
		t.Errorf("seller position = %d, want 5", shs.Positions["VLX"])
	}

	// Buy queue lost the 500 iceberg and the 400 level.
	var buyPrices []int
	book.Ascend(domain.SideBuy, func(o *domain.Order) bool {
		buyPrices = append(buyPrices, o.Price)
		return true
	})
	want := []int{300, 200, 100}
	if len(buyPrices) != len(want) {
		t.Fatalf("buy prices = %v, want %v", buyPrices, want)
	}
	for i := range want {
		if buyPrices[i] != want[i] {
			t.Fatalf("buy prices = %v, want %v", buyPrices, want)
		}
	}
}

func TestContinuous_ReplenishedIcebergGoesToBackOfLevel(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 1000000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 100})
	book := NewOrderBook("VLX")

	submit(m, book, newIceberg(1, domain.SideBuy, 500, 45, 10, "buyer", "shb"))
	submit(m, book, newLimit(2, domain.SideBuy, 500, 10, "buyer", "shb"))

	// First fill consumes the iceberg's displayed slice; it replenishes
	// and yields the level head to order 2.
	res := submit(m, book, newLimit(3, domain.SideSell, 500, 10, "seller", "shs"))
	if len(res.Trades) != 1 || res.Trades[0].Buy.OrderID != 1 {
		t.Fatalf("first fill should hit the iceberg")
	}
	ice, err := book.FindByOrderID(domain.SideBuy, 1)
	if err != nil {
		t.Fatalf("iceberg missing: %v", err)
	}
	if ice.Displayed != 10 || ice.Quantity != 35 {
		t.Errorf("iceberg displayed/qty = %d/%d, want 10/35", ice.Displayed, ice.Quantity)
	}
	if book.BestOrder(domain.SideBuy).OrderID != 2 {
		t.Errorf("best buy = %d, want 2 (iceberg moved to back)", book.BestOrder(domain.SideBuy).OrderID)
	}

	res = submit(m, book, newLimit(4, domain.SideSell, 500, 10, "seller", "shs"))
	if len(res.Trades) != 1 || res.Trades[0].Buy.OrderID != 2 {
		t.Fatalf("second fill should hit order 2 at the level head")
	}
}

func TestContinuous_NotEnoughPositionsRejectedBeforeBook(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 30})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 25, "seller", "shs"))

	// 25 resting + 10 new exceeds the held 30.
	res := submit(m, book, newLimit(2, domain.SideSell, 600, 10, "seller", "shs"))
	if res.Outcome != OutcomeNotEnoughPositions {
		t.Fatalf("outcome = %s, want not_enough_positions", res.Outcome)
	}
	if book.OrderCount(domain.SideSell) != 1 {
		t.Errorf("sell count = %d, want 1", book.OrderCount(domain.SideSell))
	}
}

func TestContinuous_NotEnoughCreditForQueueing(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "b1", 4999)
	registerShareholder(t, ss, "sh1", nil)
	book := NewOrderBook("VLX")

	res := submit(m, book, newLimit(1, domain.SideBuy, 500, 10, "b1", "sh1"))
	if res.Outcome != OutcomeNotEnoughCredit {
		t.Fatalf("outcome = %s, want not_enough_credit", res.Outcome)
	}
	if book.OrderCount(domain.SideBuy) != 0 {
		t.Errorf("buy count = %d, want 0", book.OrderCount(domain.SideBuy))
	}
	b, _ := bs.Get("b1")
	if b.Credit != 4999 {
		t.Errorf("credit = %d, want untouched 4999", b.Credit)
	}
}

// A credit failure mid-sequence rolls back the trades already confirmed.
func TestContinuous_MidSequenceCreditFailureRollsBackAll(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 5000) // covers the first trade only
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 20})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 10, "seller", "shs"))
	submit(m, book, newLimit(2, domain.SideSell, 510, 10, "seller", "shs"))

	res := submit(m, book, newLimit(3, domain.SideBuy, 510, 20, "buyer", "shb"))
	if res.Outcome != OutcomeNotEnoughCredit {
		t.Fatalf("outcome = %s, want not_enough_credit", res.Outcome)
	}

	// Everything identical to the pre-request state.
	buyer, _ := bs.Get("buyer")
	if buyer.Credit != 5000 {
		t.Errorf("buyer credit = %d, want 5000", buyer.Credit)
	}
	seller, _ := bs.Get("seller")
	if seller.Credit != 0 {
		t.Errorf("seller credit = %d, want 0", seller.Credit)
	}
	shs, _ := ss.Get("shs")
	if shs.Positions["VLX"] != 20 {
		t.Errorf("seller position = %d, want 20", shs.Positions["VLX"])
	}
	if book.OrderCount(domain.SideSell) != 2 {
		t.Fatalf("sell count = %d, want 2", book.OrderCount(domain.SideSell))
	}
	first, _ := book.FindByOrderID(domain.SideSell, 1)
	if first.Quantity != 10 {
		t.Errorf("order 1 quantity = %d, want restored 10", first.Quantity)
	}
	if book.BestOrder(domain.SideSell).OrderID != 1 {
		t.Errorf("best sell = %d, want 1", book.BestOrder(domain.SideSell).OrderID)
	}
}

func TestContinuous_MinimumExecutionRejectionIsAtomic(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 1000000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 50})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 30, "seller", "shs"))
	submit(m, book, newLimit(2, domain.SideSell, 510, 20, "seller", "shs"))

	buyerBefore, _ := bs.Get("buyer")
	creditBefore := buyerBefore.Credit

	o := newLimit(3, domain.SideBuy, 510, 100, "buyer", "shb")
	o.MinimumExecutionQuantity = 80 // only 50 available
	res := submit(m, book, o)
	if res.Outcome != OutcomeNotEnoughExecution {
		t.Fatalf("outcome = %s, want not_enough_execution", res.Outcome)
	}

	buyer, _ := bs.Get("buyer")
	if buyer.Credit != creditBefore {
		t.Errorf("buyer credit = %d, want %d", buyer.Credit, creditBefore)
	}
	seller, _ := bs.Get("seller")
	if seller.Credit != 0 {
		t.Errorf("seller credit = %d, want 0", seller.Credit)
	}
	shs, _ := ss.Get("shs")
	if shs.Positions["VLX"] != 50 {
		t.Errorf("seller position = %d, want 50", shs.Positions["VLX"])
	}
	if book.OrderCount(domain.SideSell) != 2 {
		t.Fatalf("sell count = %d, want 2", book.OrderCount(domain.SideSell))
	}
	for id, wantQty := range map[int64]int{1: 30, 2: 20} {
		o, err := book.FindByOrderID(domain.SideSell, id)
		if err != nil {
			t.Fatalf("order %d missing after rollback", id)
		}
		if o.Quantity != wantQty {
			t.Errorf("order %d quantity = %d, want %d", id, o.Quantity, wantQty)
		}
	}
}

func TestContinuous_MinimumExecutionMetQueuesRemainder(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 1000000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 30})
	book := NewOrderBook("VLX")

	submit(m, book, newLimit(1, domain.SideSell, 500, 30, "seller", "shs"))

	o := newLimit(2, domain.SideBuy, 500, 50, "buyer", "shb")
	o.MinimumExecutionQuantity = 20
	res := submit(m, book, o)
	if res.Outcome != OutcomeExecuted {
		t.Fatalf("outcome = %s, want executed", res.Outcome)
	}
	if res.Order.Quantity != 20 {
		t.Errorf("remainder = %d, want 20", res.Order.Quantity)
	}
	if res.Order.Status != domain.OrderStatusQueued {
		t.Errorf("status = %s, want queued", res.Order.Status)
	}
}

func TestAuction_OpeningPriceMaximizesTradableQuantity(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "b1", 10000000)
	registerShareholder(t, ss, "sh1", map[string]int{"VLX": 1000})
	book := NewOrderBook("VLX")

	enqueue := func(id int64, side domain.Side, price, qty int) {
		o := newLimit(id, side, price, qty, "b1", "sh1")
		o.EntrySeq = book.NextSeq()
		book.Enqueue(o)
	}

	enqueue(1, domain.SideBuy, 320, 50)
	enqueue(2, domain.SideBuy, 300, 40)
	enqueue(3, domain.SideSell, 290, 30)
	enqueue(4, domain.SideSell, 300, 40)

	// Scan runs from the lowest buy price (300) to the highest sell price
	// (300). At 300: buys 90, sells 70 → 70 tradable.
	price := m.CalcOpeningAuctionPrice(book, 250)
	if price != 300 {
		t.Errorf("opening price = %d, want 300", price)
	}
	if qty := m.TradableQuantityAt(book, 300); qty != 70 {
		t.Errorf("tradable at 300 = %d, want 70", qty)
	}
}

func TestAuction_TieBreaksTowardLastTradePrice(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "b1", 10000000)
	registerShareholder(t, ss, "sh1", map[string]int{"VLX": 1000})
	book := NewOrderBook("VLX")

	enqueue := func(id int64, side domain.Side, price, qty int) {
		o := newLimit(id, side, price, qty, "b1", "sh1")
		o.EntrySeq = book.NextSeq()
		book.Enqueue(o)
	}

	// Marginal orders widen the scanned range to [290, 330]; every price
	// in [300, 320] trades the same 40.
	enqueue(1, domain.SideBuy, 320, 40)
	enqueue(2, domain.SideBuy, 290, 1)
	enqueue(3, domain.SideSell, 300, 40)
	enqueue(4, domain.SideSell, 330, 1)

	if price := m.CalcOpeningAuctionPrice(book, 310); price != 310 {
		t.Errorf("opening price = %d, want tie resolved to last trade price 310", price)
	}
	if price := m.CalcOpeningAuctionPrice(book, 200); price != 300 {
		t.Errorf("opening price = %d, want 300 (closest scanned price to 200)", price)
	}
}

func TestAuction_EmptySideKeepsLastTradePrice(t *testing.T) {
	m, _, bs, ss := newTestEngine()
	registerBroker(t, bs, "b1", 10000000)
	registerShareholder(t, ss, "sh1", map[string]int{"VLX": 100})
	book := NewOrderBook("VLX")

	o := newLimit(1, domain.SideBuy, 320, 40, "b1", "sh1")
	o.EntrySeq = book.NextSeq()
	book.Enqueue(o)

	if price := m.CalcOpeningAuctionPrice(book, 275); price != 275 {
		t.Errorf("opening price = %d, want last trade price 275", price)
	}
}

// Auction execution settles every trade at the uniform opening price and
// refunds the buyer's reservation surplus.
func TestAuction_ExecutionRefundsBuyerSurplus(t *testing.T) {
	m, control, bs, ss := newTestEngine()
	registerBroker(t, bs, "buyer", 100000)
	registerBroker(t, bs, "seller", 0)
	registerShareholder(t, ss, "shb", nil)
	registerShareholder(t, ss, "shs", map[string]int{"VLX": 40})
	book := NewOrderBook("VLX")

	buy := newLimit(1, domain.SideBuy, 320, 40, "buyer", "shb")
	buy.EntrySeq = book.NextSeq()
	control.ReserveForQueueing(buy) // resting buys reserve full value
	book.Enqueue(buy)

	sell := newLimit(2, domain.SideSell, 290, 40, "seller", "shs")
	sell.EntrySeq = book.NextSeq()
	book.Enqueue(sell)

	opening, trades := m.AuctionExecuting(book, 300)
	if opening != 300 {
		t.Fatalf("opening = %d, want 300", opening)
	}
	if len(trades) != 1 {
		t.Fatalf("trades = %d, want 1", len(trades))
	}
	if trades[0].Price != 300 || trades[0].Quantity != 40 {
		t.Errorf("trade = %d@%d, want 40@300", trades[0].Quantity, trades[0].Price)
	}

	// Reserved 40×320 = 12800; surplus (320−300)×40 = 800 refunded.
	buyer, _ := bs.Get("buyer")
	if buyer.Credit != 100000-12800+800 {
		t.Errorf("buyer credit = %d, want 88000", buyer.Credit)
	}
	seller, _ := bs.Get("seller")
	if seller.Credit != 12000 {
		t.Errorf("seller credit = %d, want 12000", seller.Credit)
	}

	shb, _ := ss.Get("shb")
	if shb.Positions["VLX"] != 40 {
		t.Errorf("buyer position = %d, want 40", shb.Positions["VLX"])
	}
	if book.OrderCount(domain.SideBuy) != 0 || book.OrderCount(domain.SideSell) != 0 {
		t.Error("book should be empty after full auction execution")
	}
}
