// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	repository "github.com/adrewards/coinz/internal/adapters/repository"
	"github.com/adrewards/coinz/internal/domain/dedupe"
	"github.com/adrewards/coinz/internal/domain/epoch"
	"github.com/adrewards/coinz/internal/domain/model"
	"github.com/adrewards/coinz/pkg/logger"
	"github.com/adrewards/coinz/pkg/metrics"
)

const defaultLeaderboardLimit = 50

// ErrNotStarted is returned when an operation is invoked before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies: reward accrual, the leaderboard
// read, and the reset-window evaluation both share.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	policy  *epoch.Policy

	// Configuration
	leaderboardLimit int
	dedupeSize       int
	resetInterval    time.Duration
	now              func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLeaderboardLimit caps the leaderboard page size.
func WithLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardLimit = n
		}
	}
}

// WithDedupeSize sets the size of the request-id cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithResetInterval overrides the 24h reset window length.
func WithResetInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.resetInterval = d
		}
	}
}

// WithNow injects the clock used by the reset policy.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		leaderboardLimit: defaultLeaderboardLimit,
		dedupeSize:       50_000,
		resetInterval:    24 * time.Hour,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Warn(ctx, "no store configured; using in-memory store")
	}
	s.deduper = dedupe.NewRingDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.policy = epoch.New(s.store,
		epoch.WithInterval(s.resetInterval),
		epoch.WithNow(s.now),
		epoch.WithLogger(s.logger),
	)

	s.started = true
	s.logger.Info(ctx, "coinz service started",
		logger.Int("leaderboardLimit", s.leaderboardLimit),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "coinz service stopped")
}

// SubmitReward applies a reward to the user's counters, creating the record
// on first contact. The reset window is evaluated first so the counters and
// the remaining-seconds figure reflect the current epoch.
func (s *Service) SubmitReward(ctx context.Context, r model.Reward) (model.Receipt, error) {
	if !s.isStarted() {
		return model.Receipt{}, ErrNotStarted
	}

	if err := r.Validate(); err != nil {
		metrics.RecordRewardRejected()
		return model.Receipt{}, err
	}

	// Optional idempotency: a retried request id answers from the stored
	// record without a second increment.
	if r.RequestID != "" && s.deduper.SeenAndRecord(ctx, r.RequestID) {
		metrics.RecordRewardDuplicate()
		return s.duplicateReceipt(ctx, r.TelegramID)
	}

	next, err := s.policy.Ensure(ctx)
	if err != nil {
		s.unrecord(ctx, r.RequestID)
		return model.Receipt{}, err
	}

	user, err := s.store.AddReward(ctx, r.TelegramID, r.TelegramUsername, r.Amount)
	if err != nil {
		s.unrecord(ctx, r.RequestID)
		return model.Receipt{}, err
	}

	metrics.RecordRewardAccepted(r.Amount)
	s.logger.Debug(ctx, "reward applied",
		logger.String("telegramID", r.TelegramID),
		logger.Float64("amount", r.Amount),
		logger.Float64("coinzTotal", user.CoinzTotal),
	)

	return model.Receipt{
		CoinzTotal:     user.CoinzTotal,
		CoinzDaily:     user.CoinzDaily,
		ResetInSeconds: s.policy.Remaining(next),
	}, nil
}

// duplicateReceipt answers a retried submission from the stored record.
func (s *Service) duplicateReceipt(ctx context.Context, telegramID string) (model.Receipt, error) {
	next, err := s.policy.Ensure(ctx)
	if err != nil {
		return model.Receipt{}, err
	}
	user, err := s.store.GetUser(ctx, telegramID)
	if err != nil {
		return model.Receipt{}, err
	}
	return model.Receipt{
		CoinzTotal:     user.CoinzTotal,
		CoinzDaily:     user.CoinzDaily,
		ResetInSeconds: s.policy.Remaining(next),
		Duplicate:      true,
	}, nil
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) unrecord(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Unrecord(ctx, requestID)
	}
}

// Leaderboard returns the ranked page for kind, evaluating the reset window
// first so zeroed counters and the remaining-seconds figure are current.
func (s *Service) Leaderboard(ctx context.Context, kind model.LeaderboardKind) (model.LeaderboardPage, error) {
	if !s.isStarted() {
		return model.LeaderboardPage{}, ErrNotStarted
	}

	next, err := s.policy.Ensure(ctx)
	if err != nil {
		return model.LeaderboardPage{}, err
	}

	users, err := s.store.TopN(ctx, kind, s.leaderboardLimit)
	if err != nil {
		return model.LeaderboardPage{}, err
	}

	return model.LeaderboardPage{
		Kind:           kind,
		ResetInSeconds: s.policy.Remaining(next),
		Users:          users,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"leaderboardLimit": s.leaderboardLimit,
		"dedupeSize":       s.dedupeSize,
	}

	if s.started {
		if n, err := s.store.CountUsers(context.Background()); err == nil {
			stats["totalUsers"] = n
			metrics.UpdateTotalUsers(n)
		}
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
