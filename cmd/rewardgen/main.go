package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/adrewards/coinz/internal/rewardgen"
	"github.com/adrewards/coinz/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumUsers   = 100
	defaultNumRewards = 5000
	defaultMaxReward  = 50.0
	defaultRetryShare = 0.05
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:3000", "Base URL of the service")
		numUsers   = flag.Int("users", defaultNumUsers, "Number of distinct telegram identities")
		numRewards = flag.Int("rewards", defaultNumRewards, "Number of reward submissions")
		workers    = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		retryShare = flag.Float64("retries", defaultRetryShare, "Fraction of submissions retried with the same request id")
		maxReward  = flag.Float64("max", defaultMaxReward, "Upper bound for generated reward amounts")
		fetchTop   = flag.Bool("top", true, "Fetch and print both leaderboards afterwards")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &rewardgen.Config{
		BaseURL:    *baseURL,
		NumUsers:   *numUsers,
		NumRewards: *numRewards,
		Workers:    *workers,
		Timeout:    *timeout,
		RetryShare: *retryShare,
		MaxReward:  *maxReward,
		FetchTopN:  *fetchTop,
	}

	if err := rewardgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
