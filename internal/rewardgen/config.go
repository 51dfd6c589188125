// Package rewardgen generates synthetic reward traffic against a running
// coinz backend and reports the resulting leaderboards.
package rewardgen

import "time"

// Config holds configuration for a generator run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumUsers    int           // Number of distinct telegram identities
	NumRewards  int           // Number of reward submissions
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	RetryShare  float64       // Fraction of submissions retried with the same request id
	MaxReward   float64       // Upper bound for generated amounts
	FetchTopN   bool          // Fetch and print both leaderboards afterwards
}

// Submission is one POST /reward body.
type Submission struct {
	TelegramID       string  `json:"telegram_id"`
	TelegramUsername string  `json:"telegram_username,omitempty"`
	Reward           float64 `json:"reward"`
	RequestID        string  `json:"request_id,omitempty"`
}

// RewardResponse mirrors the service's reward reply.
type RewardResponse struct {
	Success             bool    `json:"success"`
	Duplicate           bool    `json:"duplicate"`
	CoinzTotal          float64 `json:"coinzTotal"`
	CoinzDaily          float64 `json:"coinzDaily"`
	DailyResetInSeconds int64   `json:"dailyResetInSeconds"`
}

// LeaderboardResponse mirrors the service's leaderboard reply.
type LeaderboardResponse struct {
	Type                string `json:"type"`
	DailyResetInSeconds int64  `json:"dailyResetInSeconds"`
	Users               []struct {
		TelegramID       string  `json:"telegram_id"`
		TelegramUsername string  `json:"telegram_username"`
		CoinzTotal       float64 `json:"coinzTotal"`
		CoinzDaily       float64 `json:"coinzDaily"`
	} `json:"users"`
}

// Stats holds run statistics.
type Stats struct {
	Submitted  int64
	Successful int64
	Duplicate  int64
	Failed     int64
	StartTime  time.Time
	Duration   time.Duration
}
