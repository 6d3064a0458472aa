package broker

import (
	"context"
	"time"

	"github.com/myshagun/backend/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tune when the inbox circuit opens.
type BreakerSettings struct {
	// ConsecutiveFailures that trip the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout before a half-open trial request is let through.
	OpenTimeout time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// BreakerInboxBroker fails fast with gobreaker.ErrOpenState while the wrapped
// broker keeps erroring, so a Redis outage does not add a dial timeout to every
// message and match.
type BreakerInboxBroker struct {
	next InboxBroker
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerInboxBroker(next InboxBroker, settings BreakerSettings) *BreakerInboxBroker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "inbox",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerInboxBroker{next: next, cb: cb}
}

func (b *BreakerInboxBroker) Bump(ctx context.Context, userIDs ...string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Bump(ctx, userIDs...)
	})
	return err
}

func (b *BreakerInboxBroker) Version(ctx context.Context, userID string) (int64, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Version(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// State reports the breaker state, mostly for tests and health output.
func (b *BreakerInboxBroker) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerInboxBroker) Close() error {
	return b.next.Close()
}
