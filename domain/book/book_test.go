package book

import (
	"errors"
	"testing"
)

func limit(id uint64, s Side, price, qty int64) *Order {
	return &Order{ID: id, Side: s, Kind: Limit, Price: price, Qty: qty, Status: Active}
}

func market(id uint64, s Side, qty int64) *Order {
	return &Order{ID: id, Side: s, Kind: Market, Qty: qty, Status: Active}
}

func mustSubmit(t *testing.T, b *Book, o *Order) []Trade {
	t.Helper()
	trades, err := b.Submit(o)
	if err != nil {
		t.Fatalf("submit id=%d: %v", o.ID, err)
	}
	return trades
}

func TestLimitOrderRestsWhenUnmarketable(t *testing.T) {
	b := New()
	trades := mustSubmit(t, b, limit(1, Buy, 100, 10))
	if len(trades) != 0 {
		t.Fatalf("expected no trades, got %d", len(trades))
	}
	price, orders, ok := b.BestBid()
	if !ok || price != 100 || orders != 1 {
		t.Errorf("best bid = (%d,%d,%v), want (100,1,true)", price, orders, ok)
	}
}

func TestFullMatchEmptiesBook(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 5))
	trades := mustSubmit(t, b, limit(2, Sell, 100, 5))

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.BuyID != 1 || tr.SellID != 2 || tr.Price != 100 || tr.Qty != 5 {
		t.Errorf("trade = %+v", tr)
	}
	if _, _, ok := b.BestBid(); ok {
		t.Error("bid side should be empty")
	}
	if _, _, ok := b.BestAsk(); ok {
		t.Error("ask side should be empty")
	}
	if b.RestingCount() != 0 {
		t.Errorf("index should be empty, has %d", b.RestingCount())
	}
}

func TestTradePriceIsMakerPrice(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Sell, 100, 5))
	trades := mustSubmit(t, b, limit(2, Buy, 105, 5))

	if len(trades) != 1 || trades[0].Price != 100 {
		t.Fatalf("trade should execute at resting price 100, got %+v", trades)
	}
}

func TestPricePriority(t *testing.T) {
	b := New()
	// Worse ask arrives first; better ask must still fill first.
	mustSubmit(t, b, limit(1, Sell, 105, 5))
	mustSubmit(t, b, limit(2, Sell, 101, 5))

	trades := mustSubmit(t, b, market(3, Buy, 5))
	if len(trades) != 1 || trades[0].SellID != 2 || trades[0].Price != 101 {
		t.Fatalf("better ask should match first, got %+v", trades)
	}
}

func TestTimePriorityFIFO(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 3))
	mustSubmit(t, b, limit(2, Buy, 100, 3))

	trades := mustSubmit(t, b, limit(3, Sell, 100, 4))
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].BuyID != 1 || trades[0].Qty != 3 {
		t.Errorf("first arrival should fill first: %+v", trades[0])
	}
	if trades[1].BuyID != 2 || trades[1].Qty != 1 {
		t.Errorf("second arrival fills the rest: %+v", trades[1])
	}
}

func TestCancelKeepsSiblingPriority(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 2))
	mustSubmit(t, b, limit(2, Buy, 100, 2))
	mustSubmit(t, b, limit(3, Buy, 100, 2))

	if _, ok := b.Cancel(2); !ok {
		t.Fatal("cancel of resting order failed")
	}

	trades := mustSubmit(t, b, limit(4, Sell, 100, 4))
	if len(trades) != 2 || trades[0].BuyID != 1 || trades[1].BuyID != 3 {
		t.Fatalf("cancel must not perturb remaining order, got %+v", trades)
	}
}

func TestSweepAcrossLevels(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Sell, 101, 5))
	mustSubmit(t, b, limit(2, Sell, 102, 5))
	mustSubmit(t, b, limit(3, Sell, 103, 5))

	trades := mustSubmit(t, b, limit(4, Buy, 103, 12))
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	wantPrices := []int64{101, 102, 103}
	wantQtys := []int64{5, 5, 2}
	for i, tr := range trades {
		if tr.Price != wantPrices[i] || tr.Qty != wantQtys[i] {
			t.Errorf("trade %d = %+v, want price=%d qty=%d", i, tr, wantPrices[i], wantQtys[i])
		}
	}
	if b.DepthAtPrice(Sell, 103) != 3 {
		t.Errorf("remaining ask depth at 103 = %d, want 3", b.DepthAtPrice(Sell, 103))
	}
	// Swept levels must be gone entirely.
	if b.DepthAtPrice(Sell, 101) != 0 || b.DepthAtPrice(Sell, 102) != 0 {
		t.Error("swept levels should have been removed")
	}
}

func TestConservation(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Sell, 100, 7))
	var filled int64
	for _, tr := range mustSubmit(t, b, limit(2, Buy, 100, 4)) {
		filled += tr.Qty
	}
	for _, tr := range mustSubmit(t, b, limit(3, Buy, 100, 9)) {
		if tr.SellID == 1 {
			filled += tr.Qty
		}
	}
	if filled != 7 {
		t.Errorf("total filled against id=1 is %d, want its original 7", filled)
	}
}

func TestNoSelfCrossPersists(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 5))
	mustSubmit(t, b, limit(2, Sell, 103, 5))
	mustSubmit(t, b, limit(3, Buy, 103, 3)) // crosses, partially fills id=2

	bid, _, bidOK := b.BestBid()
	ask, _, askOK := b.BestAsk()
	if bidOK && askOK && bid >= ask {
		t.Errorf("book is crossed: best bid %d >= best ask %d", bid, ask)
	}
}

func TestMarketOrderNeverRests(t *testing.T) {
	b := New()
	trades := mustSubmit(t, b, market(1, Sell, 2))
	if len(trades) != 0 {
		t.Fatalf("expected no trades against empty side, got %d", len(trades))
	}
	if _, _, ok := b.BestAsk(); ok {
		t.Error("market remainder must not rest")
	}
	if b.RestingCount() != 0 {
		t.Error("market order must never be indexed")
	}
}

func TestMarketOrderRemainderDiscarded(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 3))

	o := market(2, Sell, 10)
	trades := mustSubmit(t, b, o)
	if len(trades) != 1 || trades[0].Qty != 3 {
		t.Fatalf("expected one fill of 3, got %+v", trades)
	}
	if o.Status != Inactive {
		t.Error("unfilled market remainder should be discarded")
	}
	if _, _, ok := b.BestAsk(); ok {
		t.Error("remainder must not rest on the ask side")
	}
}

func TestCancelIdempotent(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 5))

	if _, ok := b.Cancel(1); !ok {
		t.Fatal("first cancel should succeed")
	}
	if _, ok := b.Cancel(1); ok {
		t.Error("second cancel must be a no-op")
	}
	if _, ok := b.Cancel(999); ok {
		t.Error("cancel of unknown id must be a no-op")
	}
}

func TestCancelDropsEmptyLevel(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 5))
	b.Cancel(1)
	if b.DepthAtPrice(Buy, 100) != 0 {
		t.Error("level should be removed once its queue is empty")
	}
	if _, _, ok := b.BestBid(); ok {
		t.Error("bid side should be empty after cancel")
	}
}

func TestInvalidOrders(t *testing.T) {
	b := New()
	cases := []*Order{
		limit(1, Buy, 100, 0),
		limit(2, Buy, 100, -3),
		limit(3, Sell, 0, 5),
		limit(4, Sell, -10, 5),
		market(5, Buy, 0),
	}
	for _, o := range cases {
		if _, err := b.Submit(o); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("order %+v: want ErrInvalidOrder, got %v", o, err)
		}
	}
	if b.RestingCount() != 0 {
		t.Error("rejected orders must not mutate the book")
	}
}

func TestDuplicateRestingIDRejected(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(7, Buy, 100, 5))
	if _, err := b.Submit(limit(7, Buy, 99, 5)); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("duplicate resting id: want ErrInvalidOrder, got %v", err)
	}
}

func TestDepthAtPriceSumsLevel(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Buy, 100, 10))
	mustSubmit(t, b, limit(11, Buy, 100, 5))
	if got := b.DepthAtPrice(Buy, 100); got != 15 {
		t.Errorf("depth at 100 = %d, want 15", got)
	}
	if got := b.DepthAtPrice(Buy, 101); got != 0 {
		t.Errorf("depth at absent level = %d, want 0", got)
	}
}

func TestTopLevels(t *testing.T) {
	b := New()
	mustSubmit(t, b, limit(1, Sell, 105, 4))
	mustSubmit(t, b, limit(2, Sell, 101, 2))
	mustSubmit(t, b, limit(3, Sell, 103, 6))
	mustSubmit(t, b, limit(4, Sell, 103, 1))
	mustSubmit(t, b, limit(5, Sell, 110, 9))

	got := b.TopLevels(Sell, 3)
	want := []LevelSummary{{101, 2}, {103, 7}, {105, 4}}
	if len(got) != len(want) {
		t.Fatalf("got %d levels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("level %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	mustSubmit(t, b, limit(6, Buy, 95, 3))
	mustSubmit(t, b, limit(7, Buy, 99, 3))
	bids := b.TopLevels(Buy, 5)
	if len(bids) != 2 || bids[0].Price != 99 || bids[1].Price != 95 {
		t.Errorf("bids best-to-worst descending, got %+v", bids)
	}

	if b.TopLevels(Sell, 0) != nil {
		t.Error("n=0 should return nothing")
	}
}

func TestSpread(t *testing.T) {
	b := New()
	if _, ok := b.Spread(); ok {
		t.Error("spread of empty book should be absent")
	}
	mustSubmit(t, b, limit(1, Buy, 100, 5))
	if _, ok := b.Spread(); ok {
		t.Error("spread with one empty side should be absent")
	}
	mustSubmit(t, b, limit(2, Sell, 103, 5))
	if sp, ok := b.Spread(); !ok || sp != 3 {
		t.Errorf("spread = (%d,%v), want (3,true)", sp, ok)
	}
}

// Mirrors the driver's worked example end to end.
func TestWorkedScenario(t *testing.T) {
	b := New()

	mustSubmit(t, b, limit(1, Buy, 100, 10))
	mustSubmit(t, b, limit(2, Buy, 101, 5))
	trades := mustSubmit(t, b, limit(3, Sell, 103, 7))
	if len(trades) != 0 {
		t.Fatalf("no trades expected yet, got %d", len(trades))
	}
	if price, _, _ := b.BestBid(); price != 101 {
		t.Fatalf("best bid = %d, want 101", price)
	}

	trades = mustSubmit(t, b, limit(4, Sell, 101, 8))
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.BuyID != 2 || tr.SellID != 4 || tr.Price != 101 || tr.Qty != 5 {
		t.Fatalf("trade = %+v, want buy=2 sell=4 price=101 qty=5", tr)
	}
	if got := b.DepthAtPrice(Sell, 101); got != 3 {
		t.Fatalf("id=4 remainder at ask 101 = %d, want 3", got)
	}

	trades = mustSubmit(t, b, market(5, Sell, 10))
	var total int64
	for _, tr := range trades {
		total += tr.Qty
	}
	if total != 10 {
		t.Fatalf("market sell should consume 10 units, got %d", total)
	}
	if trades[0].Price != 100 || trades[0].BuyID != 1 {
		t.Errorf("market sell hits best bid 100 first, got %+v", trades[0])
	}
	if b.DepthAtPrice(Buy, 100) != 0 {
		t.Errorf("bid 100 should be fully consumed, depth=%d", b.DepthAtPrice(Buy, 100))
	}
}
