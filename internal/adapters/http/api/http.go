// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/adrewards/coinz/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitReward(ctx context.Context, r model.Reward) (model.Receipt, error)
	Leaderboard(ctx context.Context, kind model.LeaderboardKind) (model.LeaderboardPage, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler        *RootHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	rewardHandler      *RewardHandler
	leaderboardHandler *LeaderboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		rootHandler:        NewRootHandler(),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		rewardHandler:      NewRewardHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/reward", MetricsMiddleware(s.rewardHandler.HandlePostReward, "reward"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/", s.rootHandler.HandleRoot)
}

// rewardRequest mirrors the POST /reward body. Reward is a pointer so a
// missing field is distinguishable from a literal zero.
type rewardRequest struct {
	TelegramID       string   `json:"telegram_id"`
	TelegramUsername string   `json:"telegram_username"`
	Reward           *float64 `json:"reward"`
	RequestID        string   `json:"request_id"`
}

func (r rewardRequest) validate() error {
	switch {
	case strings.TrimSpace(r.TelegramID) == "":
		return errors.New("missing telegram_id")
	case r.Reward == nil:
		return errors.New("missing reward")
	case math.IsNaN(*r.Reward) || math.IsInf(*r.Reward, 0):
		return errors.New("reward must be a finite number")
	case *r.Reward <= 0:
		return errors.New("reward must be positive")
	}
	return nil
}

func (r rewardRequest) toModel() model.Reward {
	return model.Reward{
		TelegramID:       r.TelegramID,
		TelegramUsername: r.TelegramUsername,
		Amount:           *r.Reward,
		RequestID:        r.RequestID,
	}
}

// rewardResponse mirrors the shape the Telegram ad-reward client expects.
type rewardResponse struct {
	Success             bool    `json:"success"`
	Duplicate           bool    `json:"duplicate,omitempty"`
	CoinzTotal          float64 `json:"coinzTotal"`
	CoinzDaily          float64 `json:"coinzDaily"`
	DailyResetInSeconds int64   `json:"dailyResetInSeconds"`
}

type leaderboardResponse struct {
	Type                string       `json:"type"`
	DailyResetInSeconds int64        `json:"dailyResetInSeconds"`
	Users               []model.User `json:"users"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeInternalError deliberately drops the cause: storage details stay in
// the server-side log, not in the response body.
func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "server error"})
}
