package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adrewards/coinz/internal/domain/model"
)

// MemStore is an in-memory Store. It backs tests and local development and
// pins the Store contract: one mutex-guarded critical section per operation
// gives the same atomicity the Mongo implementation gets from single
// document updates.
type MemStore struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	window    time.Time
	windowSet bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]*model.User),
	}
}

// AddReward upserts the user and increments both counters under one lock.
func (s *MemStore) AddReward(_ context.Context, telegramID, username string, amount float64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[telegramID]
	if !ok {
		u = &model.User{TelegramID: telegramID}
		s.users[telegramID] = u
	}
	if username != "" && u.TelegramUsername != username {
		u.TelegramUsername = username
	}
	u.CoinzTotal += amount
	u.CoinzDaily += amount
	return *u, nil
}

// GetUser returns a copy of the stored record.
func (s *MemStore) GetUser(_ context.Context, telegramID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[telegramID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return *u, nil
}

// TopN returns up to n users, counter descending, telegram id ascending on ties.
func (s *MemStore) TopN(_ context.Context, kind model.LeaderboardKind, n int) ([]model.User, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	s.mu.RUnlock()

	counter := func(u model.User) float64 {
		if kind == model.KindDaily {
			return u.CoinzDaily
		}
		return u.CoinzTotal
	}
	sort.Slice(all, func(i, j int) bool {
		if counter(all[i]) != counter(all[j]) {
			return counter(all[i]) > counter(all[j])
		}
		return all[i].TelegramID < all[j].TelegramID
	})

	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// ResetDaily zeroes every daily counter.
func (s *MemStore) ResetDaily(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched int64
	for _, u := range s.users {
		u.CoinzDaily = 0
		touched++
	}
	return touched, nil
}

// Window returns the current next-reset instant, if seeded.
func (s *MemStore) Window(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window, s.windowSet, nil
}

// SeedWindow creates the window if absent and returns the winning value.
func (s *MemStore) SeedWindow(_ context.Context, next time.Time) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.windowSet {
		return s.window, nil
	}
	s.window = next
	s.windowSet = true
	return next, nil
}

// AdvanceWindow swaps prev for next only if prev is still the stored value.
func (s *MemStore) AdvanceWindow(_ context.Context, prev, next time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.windowSet || !s.window.Equal(prev) {
		return false, nil
	}
	s.window = next
	return true, nil
}

// CountUsers returns the number of accounts tracked.
func (s *MemStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
