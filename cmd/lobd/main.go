package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lob/api/ws"
	"lob/domain/book"
	"lob/infra/config"
	"lob/infra/kafka"
	"lob/infra/log"
	"lob/infra/memory"
	"lob/infra/metrics"
	"lob/infra/outbox"
	"lob/infra/sequence"
	"lob/jobs/broadcaster"
	"lob/service"
	"lob/snapshot"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgPath := flag.String("config", envOr("LOB_CONFIG", ""), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// No logger yet.
		panic(err)
	}
	if addr := os.Getenv("LOB_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger := log.New(cfg.Logging.Level, cfg.Logging.Pretty)
	reg := metrics.Init(logger)

	// ---------------- Outbox ----------------

	// Only worth running when a broadcaster will drain it.
	var ob *outbox.Outbox
	if cfg.Kafka.Enabled {
		ob, err = outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			logger.Fatal().Err(err).Msg("outbox init failed")
		}
		defer ob.Close()
	}

	// ---------------- Domain ----------------

	b := book.New()
	pool := memory.NewPool(func() *book.Order { return &book.Order{} })
	ring := memory.NewRetireRing(cfg.Book.RingSize)
	reader := snapshot.NewReader()
	seqGen := sequence.New(0)

	// ---------------- Service ----------------

	svc := service.NewOrderService(
		cfg.Book.Symbol,
		b,
		pool,
		ring,
		reader,
		seqGen,
		ob,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------------- Background jobs ----------------

	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Book.EpochMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.AdvanceEpoch()
			}
		}
	}()

	wsSrv := ws.NewServer(svc, cfg.Feed.DepthLevels, logger)

	var depthPub service.DepthPublisher
	if cfg.Kafka.Enabled {
		bc, err := broadcaster.New(
			ob,
			cfg.Kafka.Brokers,
			cfg.Kafka.TradesTopic,
			time.Duration(cfg.Outbox.DrainMs)*time.Millisecond,
			logger,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("broadcaster init failed")
		}
		defer bc.Close()
		bc.Start(ctx)

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
		defer producer.Close()
		depthPub = producer

		go func() {
			ticker := time.NewTicker(time.Duration(cfg.Outbox.TruncateMs) * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := ob.TruncateAcked(seqGen.Current()); err != nil {
						logger.Warn().Err(err).Msg("outbox truncate failed")
					}
				}
			}
		}()
	}

	svc.StartDepthJob(
		ctx,
		time.Duration(cfg.Feed.DepthMs)*time.Millisecond,
		cfg.Feed.DepthLevels,
		depthPub,
		wsSrv.PublishDepth,
	)

	// ---------------- HTTP ----------------

	go func() {
		logger.Info().Str("addr", cfg.Server.MetricsAddr).Msg("metrics listening")
		if err := http.ListenAndServe(cfg.Server.MetricsAddr, metrics.Handler(reg)); err != nil {
			logger.Error().Err(err).Msg("metrics server exited")
		}
	}()

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: wsSrv.Routes(),
	}
	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("symbol", cfg.Book.Symbol).
			Msg("market data listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server exited")
		}
	}()

	// ---------------- Shutdown ----------------

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
