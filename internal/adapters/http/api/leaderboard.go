// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/adrewards/coinz/internal/domain/model"
	"github.com/adrewards/coinz/pkg/logger"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard?type=daily|alltime requests.
// Any unrecognized type falls back to the all-time board.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	kind := model.ParseLeaderboardKind(r.URL.Query().Get("type"))
	page, err := h.deps.Leaderboard(r.Context(), kind)
	if err != nil {
		logger.Get().Error(r.Context(), "leaderboard query failed",
			logger.String("type", string(kind)),
			logger.Error(err),
		)
		writeInternalError(w)
		return
	}

	users := page.Users
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Type:                string(page.Kind),
		DailyResetInSeconds: page.ResetInSeconds,
		Users:               users,
	})
}
