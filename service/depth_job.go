package service

import (
	"context"
	"encoding/json"
	"time"

	"lob/snapshot"
)

// DepthPublisher is what the depth job needs from a producer; the
// kafka package satisfies it.
type DepthPublisher interface {
	Send(ctx context.Context, key, value []byte) error
}

// StartDepthJob periodically builds a top-n depth snapshot and hands
// it to the publisher and the local listener. Either may be nil.
func (s *OrderService) StartDepthJob(
	ctx context.Context,
	interval time.Duration,
	levels int,
	pub DepthPublisher,
	onDepth func(snapshot.Depth),
) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				d := s.Depth(levels)
				if onDepth != nil {
					onDepth(d)
				}
				if pub == nil {
					continue
				}
				body, err := json.Marshal(d)
				if err == nil {
					err = pub.Send(ctx, []byte(d.Symbol), body)
				}
				if err != nil {
					s.log.Warn().Err(err).Msg("depth publish failed")
				}
			}
		}
	}()
}
