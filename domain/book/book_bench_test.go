package book

import "testing"

func BenchmarkSubmitResting(b *testing.B) {
	bk := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Spread prices across 1024 levels so the trees stay busy.
		_, _ = bk.Submit(&Order{
			ID:    uint64(i + 1),
			Side:  Buy,
			Kind:  Limit,
			Price: int64(i%1024 + 1),
			Qty:   10,
		})
	}
}

func BenchmarkSubmitMatching(b *testing.B) {
	bk := New()
	for i := 0; i < b.N; i++ {
		_, _ = bk.Submit(&Order{ID: uint64(i + 1), Side: Sell, Kind: Limit, Price: 100, Qty: 1})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bk.Submit(&Order{ID: uint64(b.N + i + 1), Side: Buy, Kind: Limit, Price: 100, Qty: 1})
	}
}

func BenchmarkCancel(b *testing.B) {
	bk := New()
	for i := 0; i < b.N; i++ {
		_, _ = bk.Submit(&Order{
			ID:    uint64(i + 1),
			Side:  Buy,
			Kind:  Limit,
			Price: int64(i%1024 + 1),
			Qty:   10,
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bk.Cancel(uint64(i + 1))
	}
}
