// Package repository defines the reward store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/adrewards/coinz/internal/domain/model"
)

// Store provides read/write access to reward accounts and the shared
// daily-reset window. Implementations must make AddReward a single atomic
// operation at the storage boundary; a load-mutate-save cycle loses
// increments under concurrent submissions for the same identity.
type Store interface {
	// AddReward upserts the user and increments both counters by amount in
	// one atomic operation. A non-empty username refreshes the stored one.
	// Returns the record as it stands after the increment.
	AddReward(ctx context.Context, telegramID, username string, amount float64) (model.User, error)

	// GetUser returns the record for telegramID.
	// Returns ErrNotFound if the user is unknown.
	GetUser(ctx context.Context, telegramID string) (model.User, error)

	// TopN returns up to n users ordered by the kind's counter descending,
	// ties broken by telegram id ascending.
	TopN(ctx context.Context, kind model.LeaderboardKind, n int) ([]model.User, error)

	// ResetDaily zeroes every user's daily counter and reports how many
	// records were touched.
	ResetDaily(ctx context.Context) (int64, error)

	// Window returns the persisted next-reset instant, if one exists.
	Window(ctx context.Context) (time.Time, bool, error)

	// SeedWindow creates the window record if absent and returns the winning
	// value: next when this call created it, the existing value otherwise.
	SeedWindow(ctx context.Context, next time.Time) (time.Time, error)

	// AdvanceWindow moves the window from prev to next. The swap succeeds
	// only if the stored value still equals prev, so concurrent observers
	// of an elapsed window elect exactly one winner.
	AdvanceWindow(ctx context.Context, prev, next time.Time) (bool, error)

	// CountUsers returns the number of reward accounts tracked.
	CountUsers(ctx context.Context) (int64, error)
}
