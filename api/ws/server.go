// Package ws serves the read-only market-data surface: a JSON book
// snapshot endpoint and websocket streams for trades and depth.
// Order entry is not exposed here; submissions stay with the local
// driver feeding the order service.
package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lob/domain/book"
	"lob/service"
	"lob/snapshot"
)

type Server struct {
	svc      *service.OrderService
	tradeHub *hub[service.TradeEvent]
	depthHub *hub[snapshot.Depth]
	upgrader websocket.Upgrader
	levels   int
	log      zerolog.Logger
}

type bookResponse struct {
	BestBid *levelRef           `json:"best_bid,omitempty"`
	BestAsk *levelRef           `json:"best_ask,omitempty"`
	Spread  *int64              `json:"spread,omitempty"`
	Bids    []book.LevelSummary `json:"bids"`
	Asks    []book.LevelSummary `json:"asks"`
}

type levelRef struct {
	Price  int64 `json:"price"`
	Orders int   `json:"orders"`
}

type outboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func NewServer(svc *service.OrderService, levels int, logger zerolog.Logger) *Server {
	s := &Server{
		svc:      svc,
		tradeHub: newHub[service.TradeEvent](),
		depthHub: newHub[snapshot.Depth](),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		levels:   levels,
		log:      logger,
	}
	svc.OnTrade(s.tradeHub.Broadcast)
	return s
}

// PublishDepth feeds the depth stream; wire it as the depth job's
// local listener.
func (s *Server) PublishDepth(d snapshot.Depth) {
	s.depthHub.Broadcast(d)
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/book", s.handleBook)
	mux.HandleFunc("/ws/trades", s.handleTradeStream)
	mux.HandleFunc("/ws/depth", s.handleDepthStream)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	levels := s.levels
	if raw := r.URL.Query().Get("levels"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			levels = n
		}
	}

	resp := bookResponse{
		Bids: s.svc.TopLevels(book.Buy, levels),
		Asks: s.svc.TopLevels(book.Sell, levels),
	}
	if price, orders, ok := s.svc.BestBid(); ok {
		resp.BestBid = &levelRef{Price: price, Orders: orders}
	}
	if price, orders, ok := s.svc.BestAsk(); ok {
		resp.BestAsk = &levelRef{Price: price, Orders: orders}
	}
	if sp, ok := s.svc.Spread(); ok {
		resp.Spread = &sp
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	sub := s.tradeHub.Subscribe(64)
	stream(s, w, r, "trade", sub.ch, func() { s.tradeHub.Unsubscribe(sub) })
}

func (s *Server) handleDepthStream(w http.ResponseWriter, r *http.Request) {
	sub := s.depthHub.Subscribe(16)
	stream(s, w, r, "depth", sub.ch, func() { s.depthHub.Unsubscribe(sub) })
}

func stream[T any](s *Server, w http.ResponseWriter, r *http.Request, kind string, ch <-chan T, cleanup func()) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cleanup()
		return
	}
	defer cleanup()
	defer conn.Close()

	// Drain client frames so pings/close get processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(outboundMessage{Type: kind, Data: msg}); err != nil {
			s.log.Debug().Err(err).Str("stream", kind).Msg("subscriber dropped")
			return
		}
	}
}
