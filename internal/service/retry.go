package service

import (
	"context"
	"time"

	"gameserver/internal/domain"
	"gameserver/internal/logger"
	"gameserver/internal/metrics"

	"github.com/cenkalti/backoff/v5"
)

const DefaultRetryAttempts = 3

// Retry повторяет операцию только на ErrConflict и ErrTimeout, не более attempts раз.
// Каждая попытка заново читает матч, поэтому повтор безопасен.
func Retry[T any](ctx context.Context, attempts uint, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if attempts == 0 {
		attempts = DefaultRetryAttempts
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	try := 0
	return backoff.Retry(ctx, func() (T, error) {
		try++
		if try > 1 {
			metrics.Retries.WithLabelValues(op).Inc()
			logger.WithContext(ctx).Debug("retrying", "op", op, "attempt", try)
		}
		v, err := fn(ctx)
		if err != nil && !domain.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(attempts))
}
