package book

// Trade records one match. Price is always the maker's (resting
// order's) price, never the taker's.
type Trade struct {
	BuyID  uint64
	SellID uint64
	Price  int64
	Qty    int64
}
