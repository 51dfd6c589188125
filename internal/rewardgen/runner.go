package rewardgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrewards/coinz/pkg/logger"
)

// Run generates the batch, submits it at the configured concurrency, and
// optionally prints both leaderboards.
func Run(ctx context.Context, cfg *Config) error {
	log := logger.Get()
	client := &http.Client{Timeout: cfg.Timeout}

	subs := generateSubmissions(cfg)
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "submitting rewards",
		logger.Int("users", cfg.NumUsers),
		logger.Int("submissions", len(subs)),
		logger.Int("workers", cfg.Workers),
	)

	work := make(chan Submission)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range work {
				submitOne(ctx, client, cfg.BaseURL, sub, stats)
			}
		}()
	}

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			close(work)
			wg.Wait()
			return ctx.Err()
		case work <- sub:
		}
	}
	close(work)
	wg.Wait()

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "run complete",
		logger.Int64("submitted", atomic.LoadInt64(&stats.Submitted)),
		logger.Int64("successful", atomic.LoadInt64(&stats.Successful)),
		logger.Int64("duplicate", atomic.LoadInt64(&stats.Duplicate)),
		logger.Int64("failed", atomic.LoadInt64(&stats.Failed)),
		logger.String("duration", stats.Duration.String()),
	)

	if atomic.LoadInt64(&stats.Failed) > 0 {
		return fmt.Errorf("%d submissions failed", atomic.LoadInt64(&stats.Failed))
	}

	if cfg.FetchTopN {
		for _, kind := range []string{"alltime", "daily"} {
			if err := printLeaderboard(ctx, client, cfg.BaseURL, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

func submitOne(ctx context.Context, client *http.Client, baseURL string, sub Submission, stats *Stats) {
	atomic.AddInt64(&stats.Submitted, 1)

	body, err := json.Marshal(sub)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/reward", bytes.NewReader(body))
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	defer resp.Body.Close()

	var ack RewardResponse
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&ack) != nil || !ack.Success {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	if ack.Duplicate {
		atomic.AddInt64(&stats.Duplicate, 1)
		return
	}
	atomic.AddInt64(&stats.Successful, 1)
}

func printLeaderboard(ctx context.Context, client *http.Client, baseURL, kind string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/leaderboard?type="+kind, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s leaderboard: %w", kind, err)
	}
	defer resp.Body.Close()

	var board LeaderboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return fmt.Errorf("decode %s leaderboard: %w", kind, err)
	}

	log := logger.Get()
	log.Info(ctx, "leaderboard",
		logger.String("type", board.Type),
		logger.Int("entries", len(board.Users)),
		logger.Int64("dailyResetInSeconds", board.DailyResetInSeconds),
	)
	for i, u := range board.Users {
		if i >= 10 {
			break
		}
		log.Info(ctx, "entry",
			logger.Int("rank", i+1),
			logger.String("telegramID", u.TelegramID),
			logger.Float64("coinzTotal", u.CoinzTotal),
			logger.Float64("coinzDaily", u.CoinzDaily),
		)
	}
	return nil
}
