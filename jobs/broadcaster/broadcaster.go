// Package broadcaster drains the feed outbox to Kafka. Records are
// marked SENT before publish and ACKED after the broker confirms, so
// a crash between the two re-sends rather than drops: delivery is at
// least once, consumers deduplicate on event id.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"lob/infra/metrics"
	"lob/infra/outbox"
)

type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      zerolog.Logger
}

func New(
	ob *outbox.Outbox,
	brokers []string,
	topic string,
	interval time.Duration,
	logger zerolog.Logger,
) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      logger,
	}, nil
}

// Start runs the drain loop until ctx is cancelled.
func (b *Broadcaster) Start(ctx context.Context) {
	b.log.Info().Str("topic", b.topic).Msg("broadcaster started")

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.drainOnce()
			}
		}
	}()
}

func (b *Broadcaster) drainOnce() {
	var pending int
	err := b.outbox.ScanPending(func(rec outbox.Record) error {
		pending++

		if err := b.outbox.MarkSent(rec.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(rec.Seq, 10)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			// Leave as SENT; the next tick retries it.
			b.log.Warn().Uint64("seq", rec.Seq).Err(err).Msg("kafka send failed")
			return nil
		}

		pending--
		return b.outbox.MarkAcked(rec.Seq)
	})
	if err != nil {
		b.log.Error().Err(err).Msg("outbox scan failed")
	}
	metrics.OutboxPending.Set(float64(pending))
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
