// Package model contains domain values passed between layers.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidReward marks a reward submission rejected at the boundary.
var ErrInvalidReward = errors.New("invalid reward")

// User is a single reward account keyed by Telegram identity.
type User struct {
	TelegramID       string  `json:"telegram_id" bson:"telegram_id"`
	TelegramUsername string  `json:"telegram_username,omitempty" bson:"telegram_username,omitempty"`
	CoinzTotal       float64 `json:"coinzTotal" bson:"coinzTotal"`
	CoinzDaily       float64 `json:"coinzDaily" bson:"coinzDaily"`
}

// Reward is a client-reported amount to add to a user's counters.
// RequestID is optional; when present it makes the submission
// idempotent-if-retried.
type Reward struct {
	TelegramID       string
	TelegramUsername string
	Amount           float64
	RequestID        string
}

// Validate rejects submissions that would corrupt stored counters.
// The amount must be a finite, strictly positive number.
func (r Reward) Validate() error {
	switch {
	case strings.TrimSpace(r.TelegramID) == "":
		return fmt.Errorf("%w: missing telegram_id", ErrInvalidReward)
	case math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0):
		return fmt.Errorf("%w: reward must be a finite number", ErrInvalidReward)
	case r.Amount <= 0:
		return fmt.Errorf("%w: reward must be positive", ErrInvalidReward)
	}
	return nil
}

// Receipt carries the post-increment totals returned to the submitter.
type Receipt struct {
	CoinzTotal     float64
	CoinzDaily     float64
	ResetInSeconds int64
	Duplicate      bool
}

// LeaderboardKind selects the counter a leaderboard is ranked by.
type LeaderboardKind string

const (
	KindDaily   LeaderboardKind = "daily"
	KindAllTime LeaderboardKind = "alltime"
)

// ParseLeaderboardKind maps a query-string value to a kind. Anything that is
// not exactly "daily" ranks all-time; the client relies on that fallback.
func ParseLeaderboardKind(s string) LeaderboardKind {
	if s == string(KindDaily) {
		return KindDaily
	}
	return KindAllTime
}

// LeaderboardPage is a ranked, bounded read of the user set.
type LeaderboardPage struct {
	Kind           LeaderboardKind
	ResetInSeconds int64
	Users          []User
}
