package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
