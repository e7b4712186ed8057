package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lob/domain/book"
	"lob/infra/memory"
	"lob/infra/metrics"
	"lob/infra/outbox"
	"lob/infra/sequence"
	"lob/snapshot"
)

// OrderService serializes all writes to the book behind one mutex;
// price-time priority is only well-defined over a serial order stream.
// Queries take the read lock plus a reader epoch.
type OrderService struct {
	mu     sync.RWMutex
	symbol string

	book   *book.Book
	pool   *memory.Pool[book.Order]
	ring   *memory.RetireRing
	reader *snapshot.Reader
	seq    *sequence.Sequencer
	outbox *outbox.Outbox // nil disables the feed outbox

	log       zerolog.Logger
	tradeSubs []func(TradeEvent)
}

func NewOrderService(
	symbol string,
	b *book.Book,
	pool *memory.Pool[book.Order],
	ring *memory.RetireRing,
	reader *snapshot.Reader,
	seq *sequence.Sequencer,
	ob *outbox.Outbox,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		symbol: symbol,
		book:   b,
		pool:   pool,
		ring:   ring,
		reader: reader,
		seq:    seq,
		outbox: ob,
		log:    logger,
	}
}

// OnTrade registers a listener for executed trades. Register during
// wiring, before traffic starts.
func (s *OrderService) OnTrade(fn func(TradeEvent)) {
	s.mu.Lock()
	s.tradeSubs = append(s.tradeSubs, fn)
	s.mu.Unlock()
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// PlaceOrder submits a new order. It returns the assigned sequence
// number and the trades the submission produced.
func (s *OrderService) PlaceOrder(
	side book.Side,
	kind book.Kind,
	price int64,
	qty int64,
	id uint64,
) (uint64, []book.Trade, error) {
	start := time.Now()

	s.mu.Lock()

	o := s.pool.Get()
	*o = book.Order{
		ID:     id,
		Side:   side,
		Kind:   kind,
		Price:  price,
		Qty:    qty,
		SeqID:  s.seq.Next(),
		Status: book.Active,
	}
	seqID := o.SeqID

	trades, err := s.book.Submit(o)
	if err != nil {
		s.pool.Put(o)
		s.mu.Unlock()
		metrics.OrdersRejectedTotal.Inc()
		s.log.Debug().Uint64("id", id).Err(err).Msg("order rejected")
		return 0, nil, err
	}

	// Fully filled, or a discarded market remainder: the order is
	// done and can be reclaimed once readers move on.
	if o.Status == book.Inactive {
		s.retire(o)
	}

	events := s.recordTrades(trades)
	s.updateBookGauges()
	s.mu.Unlock()

	metrics.OrdersSubmittedTotal.Inc()
	metrics.SubmitLatency.Observe(float64(time.Since(start).Microseconds()))
	s.notify(events)

	s.log.Debug().
		Uint64("id", id).
		Uint64("seq", seqID).
		Stringer("side", side).
		Stringer("kind", kind).
		Int64("price", price).
		Int64("qty", qty).
		Int("trades", len(trades)).
		Msg("order placed")

	return seqID, trades, nil
}

// CancelOrder withdraws a resting order. false means the id was not
// resting (already filled, already cancelled, or never existed) —
// that is normal traffic, not an error.
func (s *OrderService) CancelOrder(id uint64) bool {
	s.mu.Lock()
	o, ok := s.book.Cancel(id)
	if ok {
		s.retire(o)
		s.updateBookGauges()
	}
	s.mu.Unlock()

	if ok {
		metrics.OrdersCancelledTotal.Inc()
		s.log.Debug().Uint64("id", id).Msg("order cancelled")
	}
	return ok
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) BestBid() (price int64, orders int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return s.book.BestBid()
}

func (s *OrderService) BestAsk() (price int64, orders int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return s.book.BestAsk()
}

func (s *OrderService) Spread() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return s.book.Spread()
}

func (s *OrderService) DepthAtPrice(side book.Side, price int64) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return s.book.DepthAtPrice(side, price)
}

func (s *OrderService) TopLevels(side book.Side, n int) []book.LevelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return s.book.TopLevels(side, n)
}

// Depth builds a consistent feed snapshot of the top n levels.
func (s *OrderService) Depth(n int) snapshot.Depth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.reader.Begin()
	defer s.reader.End()
	return snapshot.BuildDepth(s.book, s.symbol, s.seq.Current(), n)
}

//
// ──────────────────────────────────────────────────────────
// Reclamation
// ──────────────────────────────────────────────────────────
//

// AdvanceEpoch performs safe reclamation. Called periodically by a
// background job.
func (s *OrderService) AdvanceEpoch() {
	memory.AdvanceEpochAndReclaim(
		s.ring,
		s.pool,
		s.reader.Epoch(),
	)
}

//
// ──────────────────────────────────────────────────────────
// Internals (caller holds mu)
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) retire(o *book.Order) {
	// A full ring just leaves the order to the GC.
	_ = s.ring.Enqueue(o)
}

func (s *OrderService) recordTrades(trades []book.Trade) []TradeEvent {
	if len(trades) == 0 {
		return nil
	}
	events := make([]TradeEvent, 0, len(trades))
	for _, tr := range trades {
		ev := TradeEvent{
			EventID: uuid.NewString(),
			Symbol:  s.symbol,
			Seq:     s.seq.Next(),
			BuyID:   tr.BuyID,
			SellID:  tr.SellID,
			Price:   tr.Price,
			Qty:     tr.Qty,
			Time:    time.Now(),
		}
		events = append(events, ev)

		if s.outbox != nil {
			payload, err := json.Marshal(ev)
			if err == nil {
				err = s.outbox.Put(ev.Seq, payload)
			}
			if err != nil {
				s.log.Error().Uint64("seq", ev.Seq).Err(err).Msg("outbox write failed")
			}
		}

		metrics.TradesTotal.Inc()
		metrics.VolumeTradedTotal.Add(float64(tr.Qty))
	}
	return events
}

func (s *OrderService) updateBookGauges() {
	metrics.RestingOrders.Set(float64(s.book.RestingCount()))
	if price, _, ok := s.book.BestBid(); ok {
		metrics.BestBid.Set(float64(price))
	} else {
		metrics.BestBid.Set(0)
	}
	if price, _, ok := s.book.BestAsk(); ok {
		metrics.BestAsk.Set(float64(price))
	} else {
		metrics.BestAsk.Set(0)
	}
}

func (s *OrderService) notify(events []TradeEvent) {
	if len(events) == 0 {
		return
	}
	s.mu.RLock()
	subs := s.tradeSubs
	s.mu.RUnlock()
	for _, fn := range subs {
		for _, ev := range events {
			fn(ev)
		}
	}
}
