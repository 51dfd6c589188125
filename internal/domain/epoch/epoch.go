// Package epoch implements the rolling daily-reset window shared by all
// users: a singleton next-reset instant that advances on a fixed 24-hour
// grid and zeroes every daily counter when it elapses.
package epoch

import (
	"context"
	"time"

	"github.com/adrewards/coinz/pkg/logger"
	"github.com/adrewards/coinz/pkg/metrics"
)

// Store is the slice of the repository the policy needs. The policy itself
// holds no state; the window record and the counters live in the store.
type Store interface {
	Window(ctx context.Context) (time.Time, bool, error)
	SeedWindow(ctx context.Context, next time.Time) (time.Time, error)
	AdvanceWindow(ctx context.Context, prev, next time.Time) (bool, error)
	ResetDaily(ctx context.Context) (int64, error)
}

// Policy evaluates and advances the reset window. It runs on the request
// path of every reward and leaderboard call; there is no timer.
type Policy struct {
	store    Store
	interval time.Duration
	now      func() time.Time
	log      logger.Logger
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithInterval overrides the 24h window length.
func WithInterval(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithNow injects the clock.
func WithNow(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets a custom logger for the policy.
func WithLogger(log logger.Logger) Option {
	return func(p *Policy) {
		if log != nil {
			p.log = log
		}
	}
}

// New constructs a Policy over store.
func New(store Store, opts ...Option) *Policy {
	p := &Policy{
		store:    store,
		interval: 24 * time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure returns the current next-reset instant, advancing the window and
// zeroing the daily counters first when it has elapsed.
//
// The window record is lazily seeded at now+interval. Once it exists, the
// advance target is computed from the PREVIOUS persisted value in whole
// interval steps, so the boundary stays on a fixed grid however late the
// evaluation runs. The advance is a compare-and-swap on the previous value;
// only the winner performs the bulk reset, so concurrent observers of an
// elapsed window can neither double-advance nor double-reset.
func (p *Policy) Ensure(ctx context.Context) (time.Time, error) {
	next, ok, err := p.store.Window(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return p.store.SeedWindow(ctx, p.now().UTC().Add(p.interval))
	}

	now := p.now()
	if now.Before(next) {
		return next, nil
	}

	target := next
	for !target.After(now) {
		target = target.Add(p.interval)
	}

	won, err := p.store.AdvanceWindow(ctx, next, target)
	if err != nil {
		return time.Time{}, err
	}
	if !won {
		// A concurrent caller advanced and reset; take their value.
		fresh, ok, err := p.store.Window(ctx)
		if err != nil {
			return time.Time{}, err
		}
		if ok {
			return fresh, nil
		}
		return target, nil
	}

	touched, err := p.store.ResetDaily(ctx)
	if err != nil {
		return time.Time{}, err
	}
	metrics.RecordDailyReset(touched)
	if p.log != nil {
		p.log.Info(ctx, "daily counters reset",
			logger.Int64("usersTouched", touched),
			logger.String("nextResetAt", target.Format(time.RFC3339)),
		)
	}
	return target, nil
}

// Remaining converts a next-reset instant into whole seconds from now,
// floored and clamped at zero.
func (p *Policy) Remaining(next time.Time) int64 {
	d := next.Sub(p.now())
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
