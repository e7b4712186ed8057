package service

import "time"

// TradeEvent is the outbound form of a trade: the domain Trade plus
// the envelope the feed needs (event id, sequence, timestamp).
type TradeEvent struct {
	EventID string    `json:"event_id"`
	Symbol  string    `json:"symbol"`
	Seq     uint64    `json:"seq"`
	BuyID   uint64    `json:"buy_id"`
	SellID  uint64    `json:"sell_id"`
	Price   int64     `json:"price"`
	Qty     int64     `json:"qty"`
	Time    time.Time `json:"time"`
}
