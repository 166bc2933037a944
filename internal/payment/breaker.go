package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	MaxFailures: 5,
	OpenTimeout: 30 * time.Second,
}

// BreakerGateway fails fast while the upstream gateway keeps erroring. No retries.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[*Intent]
}

func NewBreakerGateway(next Gateway, s BreakerSettings, log *zap.Logger) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about gateway health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerGateway{next: next, cb: cb}
}

func (b *BreakerGateway) CreateOrder(ctx context.Context, amountMinor int64, currency string, receipt string) (*Intent, error) {
	intent, err := b.cb.Execute(func() (*Intent, error) {
		return b.next.CreateOrder(ctx, amountMinor, currency, receipt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func (b *BreakerGateway) State() gobreaker.State {
	return b.cb.State()
}
