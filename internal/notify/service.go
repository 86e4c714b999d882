// Package notify turns OrderConfirmed events into confirmation emails.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/Sereska7/Project-Shop/internal/kafka"
	"github.com/Sereska7/Project-Shop/internal/metrics"
	"github.com/Sereska7/Project-Shop/internal/redisx"
	"github.com/Sereska7/Project-Shop/internal/shop"
)

const dedupScope = "notifier"

type Service struct {
	Redis      *redis.Client
	Sender     Sender
	MaxRetries int
	RetryBase  time.Duration // first backoff interval, zero means 500ms
	Log        *zap.Logger
	Metrics    *metrics.ServerMetrics
}

// HandleOrderConfirmed is installed as the consumer handler. It returns an
// error only when ctx is cancelled mid-delivery. Undeliverable mail is
// logged and dropped.
func (s *Service) HandleOrderConfirmed(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.logger().Error("decode envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != shop.EventOrderConfirmed {
		return nil
	}
	log := s.logger().With(zap.String("event_id", env.EventID), zap.String("trace_id", env.TraceID))

	dkey := fmt.Sprintf(redisx.KeyDedup, dedupScope, env.EventID)
	// On lookup failure send anyway; an error here would not get the message
	// redelivered once a later offset on its partition commits.
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		log.Warn("dedup lookup", zap.Error(err))
	}
	if seen {
		log.Info("duplicate event skipped")
		s.Metrics.Email("duplicate")
		return nil
	}

	p, err := kafkax.UnwrapPayload[shop.OrderConfirmedPayload](env.Payload)
	if err != nil {
		log.Error("decode payload", zap.Error(err))
		return nil
	}
	log = log.With(zap.Int64("order_id", p.Order.OrderID))

	e, err := RenderConfirmation(p.Order, p.EmailTo)
	if err != nil {
		log.Error("render confirmation", zap.Error(err))
		return nil
	}

	attempts := 0
	err = backoff.Retry(func() error {
		attempts++
		return s.Sender.Send(ctx, e)
	}, backoff.WithContext(s.policy(), ctx))
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Error("confirmation email failed", zap.Int("attempts", attempts), zap.Error(err))
		s.Metrics.Email("failed")
		return nil
	}

	if err := s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err(); err != nil {
		log.Warn("dedup mark", zap.Error(err))
	}
	log.Info("confirmation email sent", zap.Int("attempts", attempts))
	s.Metrics.Email("sent")
	return nil
}

func (s *Service) policy() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if s.RetryBase > 0 {
		eb.InitialInterval = s.RetryBase
	} else {
		eb.InitialInterval = 500 * time.Millisecond
	}
	eb.MaxElapsedTime = 0
	retries := s.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(eb, uint64(retries))
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
