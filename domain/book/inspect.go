package book

// LevelSummary is one price level as seen from outside: the price and
// the total remaining quantity resting there.
type LevelSummary struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

// BestBid returns the highest bid price and the number of orders
// resting there (not total quantity).
func (b *Book) BestBid() (price int64, orders int, ok bool) {
	lvl := b.bids.MaxLevel()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.Price, lvl.OrderCount, true
}

// BestAsk returns the lowest ask price and the order count there.
func (b *Book) BestAsk() (price int64, orders int, ok bool) {
	lvl := b.asks.MinLevel()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.Price, lvl.OrderCount, true
}

// Spread is best ask minus best bid; ok is false if either side is empty.
func (b *Book) Spread() (int64, bool) {
	bid := b.bids.MaxLevel()
	ask := b.asks.MinLevel()
	if bid == nil || ask == nil {
		return 0, false
	}
	return ask.Price - bid.Price, true
}

// DepthAtPrice sums remaining quantity at an exact price on one side;
// zero if no level exists there.
func (b *Book) DepthAtPrice(s Side, price int64) int64 {
	lvl := b.sideTree(s).FindLevel(price)
	if lvl == nil {
		return 0
	}
	return lvl.TotalQty
}

// TopLevels returns up to n levels best-to-worst: descending price for
// bids, ascending for asks.
func (b *Book) TopLevels(s Side, n int) []LevelSummary {
	if n <= 0 {
		return nil
	}
	out := make([]LevelSummary, 0, n)
	collect := func(lvl *PriceLevel) bool {
		out = append(out, LevelSummary{Price: lvl.Price, Qty: lvl.TotalQty})
		return len(out) < n
	}
	if s == Buy {
		b.bids.ForEachDescending(collect)
	} else {
		b.asks.ForEachAscending(collect)
	}
	return out
}
