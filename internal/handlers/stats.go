package handlers

import (
	"net/http"

	"github.com/sdko-org/lawchat-api/internal/models"
)

// HandleDailyStats serves the chat_log_daily_stats aggregate view:
// per day and source, the request count, average response time and
// answered count.
func (h *Handler) HandleDailyStats(w http.ResponseWriter, r *http.Request) {
	var stats []models.DailyStat
	if err := h.db.WithContext(r.Context()).Order("day DESC, source ASC").Find(&stats).Error; err != nil {
		h.log.WithError(err).Error("Daily stats query failed")
		writeError(w, http.StatusInternalServerError, "Stats are temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
