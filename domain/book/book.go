package book

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder rejects an order before any state is touched.
var ErrInvalidOrder = errors.New("invalid order")

type location struct {
	side  Side
	price int64
}

// Book is the single-writer state for one instrument: a tree of price
// levels per side plus an id index over every resting order. The index
// is a derived cache of the level queues; both are mutated only inside
// Submit and Cancel so the consistency invariant lives in one place.
type Book struct {
	bids *RBTree
	asks *RBTree

	// id -> resting location; present iff the order rests with
	// Remaining() > 0.
	index map[uint64]location
}

func New() *Book {
	return &Book{
		bids:  NewRBTree(),
		asks:  NewRBTree(),
		index: make(map[uint64]location),
	}
}

// Submit crosses o against the opposing side until it is exhausted or
// unmarketable, then rests any limit remainder. Market remainders are
// discarded: market orders never rest. Trades are returned oldest
// level first. On ErrInvalidOrder the book is untouched.
func (b *Book) Submit(o *Order) ([]Trade, error) {
	if err := b.validate(o); err != nil {
		return nil, err
	}

	trades := b.match(o)

	if o.Remaining() > 0 && o.Kind == Limit {
		b.rest(o)
	} else {
		o.Status = Inactive
	}
	return trades, nil
}

// Cancel withdraws a resting order. An unknown id is a no-op, not an
// error: a cancel racing a fill is normal exchange traffic. Sibling
// time priority is untouched.
func (b *Book) Cancel(id uint64) (*Order, bool) {
	loc, ok := b.index[id]
	if !ok {
		return nil, false
	}

	tree := b.sideTree(loc.side)
	lvl := tree.FindLevel(loc.price)
	if lvl == nil {
		panic(fmt.Sprintf("book: index points at missing level side=%v price=%d", loc.side, loc.price))
	}

	var o *Order
	for cur := lvl.Head(); cur != nil; cur = cur.Next() {
		if cur.ID == id {
			o = cur
			break
		}
	}
	if o == nil {
		panic(fmt.Sprintf("book: order %d indexed but absent from its level queue", id))
	}

	lvl.Unlink(o)
	o.Status = Inactive
	delete(b.index, id)
	if lvl.Empty() {
		tree.DeleteLevel(loc.price)
	}
	return o, true
}

// RestingCount reports how many orders currently rest on the book.
func (b *Book) RestingCount() int {
	return len(b.index)
}

func (b *Book) validate(o *Order) error {
	if o.Qty <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidOrder, o.Qty)
	}
	if o.Kind == Limit && o.Price <= 0 {
		return fmt.Errorf("%w: limit price %d", ErrInvalidOrder, o.Price)
	}
	if _, dup := b.index[o.ID]; dup {
		return fmt.Errorf("%w: id %d already resting", ErrInvalidOrder, o.ID)
	}
	return nil
}

// match is the one crossing routine for both sides; the side only
// decides which tree supplies the best level and how marketability
// compares. An explicit loop, not recursion: incoming size is caller
// controlled and a large order may sweep many levels.
func (b *Book) match(o *Order) []Trade {
	var trades []Trade
	opp := b.sideTree(o.Side.Opposite())

	for o.Remaining() > 0 {
		best := b.bestOpposing(o.Side)
		if best == nil || !marketable(o, best.Price) {
			return trades
		}

		head := best.Head()
		if head == nil {
			panic(fmt.Sprintf("book: empty level %d left in tree", best.Price))
		}

		qty := min64(o.Remaining(), head.Remaining())
		trades = append(trades, newTrade(o, head, best.Price, qty))

		o.Filled += qty
		best.Reduce(head, qty)

		if head.Remaining() == 0 {
			head.Status = Inactive
			best.PopHead()
			b.unindex(head.ID)
			if best.Empty() {
				opp.DeleteLevel(best.Price)
			}
		}
	}
	return trades
}

func (b *Book) rest(o *Order) {
	b.sideTree(o.Side).UpsertLevel(o.Price).Enqueue(o)
	b.index[o.ID] = location{side: o.Side, price: o.Price}
}

func (b *Book) unindex(id uint64) {
	if _, ok := b.index[id]; !ok {
		panic(fmt.Sprintf("book: resting order %d missing from index", id))
	}
	delete(b.index, id)
}

func (b *Book) sideTree(s Side) *RBTree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// bestOpposing: a Buy looks at the lowest ask, a Sell at the highest bid.
func (b *Book) bestOpposing(s Side) *PriceLevel {
	if s == Buy {
		return b.asks.MinLevel()
	}
	return b.bids.MaxLevel()
}

func marketable(o *Order, bestPrice int64) bool {
	if o.Kind == Market {
		return true
	}
	if o.Side == Buy {
		return o.Price >= bestPrice
	}
	return o.Price <= bestPrice
}

func newTrade(taker, maker *Order, price, qty int64) Trade {
	t := Trade{Price: price, Qty: qty}
	if taker.Side == Buy {
		t.BuyID, t.SellID = taker.ID, maker.ID
	} else {
		t.BuyID, t.SellID = maker.ID, taker.ID
	}
	return t
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
