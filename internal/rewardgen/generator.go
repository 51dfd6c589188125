package rewardgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// generateSubmissions builds the full batch up front: uuid identities spread
// across the configured user count, randomized amounts, and a request id on
// every submission so a slice of them can be retried verbatim.
func generateSubmissions(cfg *Config) []Submission {
	users := make([]string, cfg.NumUsers)
	for i := range users {
		users[i] = uuid.New().String()
	}

	subs := make([]Submission, 0, cfg.NumRewards)
	for i := 0; i < cfg.NumRewards; i++ {
		userIdx := rand.Intn(len(users))
		subs = append(subs, Submission{
			TelegramID:       users[userIdx],
			TelegramUsername: fmt.Sprintf("loadgen_%d", userIdx),
			Reward:           1 + rand.Float64()*(cfg.MaxReward-1),
			RequestID:        uuid.New().String(),
		})
	}

	// Retries are copies of already-present submissions; the backend must
	// answer them as duplicates without a second increment.
	retries := int(float64(len(subs)) * cfg.RetryShare)
	for i := 0; i < retries; i++ {
		subs = append(subs, subs[rand.Intn(cfg.NumRewards)])
	}
	rand.Shuffle(len(subs), func(i, j int) { subs[i], subs[j] = subs[j], subs[i] })
	return subs
}
