package snapshot

import (
	"time"

	"github.com/google/uuid"

	"lob/domain/book"
)

// Depth is a point-in-time view of the top n levels per side,
// best-to-worst. It is what the feed publishes.
type Depth struct {
	EventID string              `json:"event_id"`
	Symbol  string              `json:"symbol"`
	Seq     uint64              `json:"seq"`
	Time    time.Time           `json:"time"`
	Bids    []book.LevelSummary `json:"bids"`
	Asks    []book.LevelSummary `json:"asks"`
}

// BuildDepth walks both sides of the book. The caller must hold the
// book still (read lock + reader epoch) while it runs.
func BuildDepth(b *book.Book, symbol string, seq uint64, n int) Depth {
	return Depth{
		EventID: uuid.NewString(),
		Symbol:  symbol,
		Seq:     seq,
		Time:    time.Now(),
		Bids:    b.TopLevels(book.Buy, n),
		Asks:    b.TopLevels(book.Sell, n),
	}
}
