package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	OrdersSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_submitted_total", Help: "Orders accepted by the engine"})
	OrdersRejectedTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_rejected_total", Help: "Orders rejected as invalid"})
	OrdersCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "orders_cancelled_total", Help: "Resting orders cancelled"})
	TradesTotal          = prometheus.NewCounter(prometheus.CounterOpts{Name: "trades_total", Help: "Trades executed"})
	VolumeTradedTotal    = prometheus.NewCounter(prometheus.CounterOpts{Name: "volume_traded_total", Help: "Total quantity traded"})
	RestingOrders        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "resting_orders", Help: "Orders currently resting on the book"})
	BestBid              = prometheus.NewGauge(prometheus.GaugeOpts{Name: "best_bid_ticks", Help: "Best bid price in ticks, 0 when empty"})
	BestAsk              = prometheus.NewGauge(prometheus.GaugeOpts{Name: "best_ask_ticks", Help: "Best ask price in ticks, 0 when empty"})
	SubmitLatency        = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "submit_latency_us", Help: "Submit latency in microseconds", Buckets: prometheus.ExponentialBuckets(1, 2, 16)})
	OutboxPending        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "outbox_pending_events", Help: "Events awaiting broker ack"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		OrdersSubmittedTotal, OrdersRejectedTotal, OrdersCancelledTotal,
		TradesTotal, VolumeTradedTotal, RestingOrders, BestBid, BestAsk,
		SubmitLatency, OutboxPending,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
