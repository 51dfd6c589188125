// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adrewards/coinz/internal/domain/model"
	"github.com/adrewards/coinz/pkg/logger"
)

// RewardHandler handles reward submissions.
type RewardHandler struct {
	deps Dependencies
}

// NewRewardHandler creates a new reward handler.
func NewRewardHandler(deps Dependencies) *RewardHandler {
	return &RewardHandler{deps: deps}
}

// HandlePostReward handles POST /reward requests.
func (h *RewardHandler) HandlePostReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rcpt, err := h.deps.SubmitReward(r.Context(), req.toModel())
	if err != nil {
		// Validation is duplicated at the service boundary; translate it the
		// same way in case a caller bypasses the request-shape check.
		if errors.Is(err, model.ErrInvalidReward) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		logger.Get().Error(r.Context(), "reward submission failed",
			logger.String("telegramID", req.TelegramID),
			logger.Error(err),
		)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, rewardResponse{
		Success:             true,
		Duplicate:           rcpt.Duplicate,
		CoinzTotal:          rcpt.CoinzTotal,
		CoinzDaily:          rcpt.CoinzDaily,
		DailyResetInSeconds: rcpt.ResetInSeconds,
	})
}
