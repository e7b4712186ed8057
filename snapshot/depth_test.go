package snapshot

import (
	"testing"

	"lob/domain/book"
)

func TestBuildDepth(t *testing.T) {
	b := book.New()
	orders := []*book.Order{
		{ID: 1, Side: book.Buy, Kind: book.Limit, Price: 99, Qty: 5},
		{ID: 2, Side: book.Buy, Kind: book.Limit, Price: 100, Qty: 3},
		{ID: 3, Side: book.Sell, Kind: book.Limit, Price: 101, Qty: 7},
		{ID: 4, Side: book.Sell, Kind: book.Limit, Price: 102, Qty: 2},
		{ID: 5, Side: book.Sell, Kind: book.Limit, Price: 104, Qty: 1},
	}
	for _, o := range orders {
		if _, err := b.Submit(o); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	d := BuildDepth(b, "LOB", 42, 2)

	if d.EventID == "" {
		t.Error("event id missing")
	}
	if d.Symbol != "LOB" || d.Seq != 42 {
		t.Errorf("header = %q seq=%d", d.Symbol, d.Seq)
	}
	if len(d.Bids) != 2 || d.Bids[0].Price != 100 || d.Bids[1].Price != 99 {
		t.Errorf("bids = %+v, want best-first 100 then 99", d.Bids)
	}
	if len(d.Asks) != 2 || d.Asks[0].Price != 101 || d.Asks[1].Price != 102 {
		t.Errorf("asks = %+v, want best-first 101 then 102", d.Asks)
	}
}

func TestBuildDepthEmptyBook(t *testing.T) {
	d := BuildDepth(book.New(), "LOB", 1, 5)
	if len(d.Bids) != 0 || len(d.Asks) != 0 {
		t.Errorf("empty book should yield empty sides: %+v", d)
	}
}
