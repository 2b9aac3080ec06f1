package handler

import (
	"context"
	"net/http"

	"github.com/remindful/remindful/internal/api/models"
	"github.com/remindful/remindful/internal/api/response"
)

// ScanRunner executes one scheduler pass and reports how many due reminders
// it processed.
type ScanRunner interface {
	RunScanPass(ctx context.Context) (int, error)
}

// CronHandler exposes the externally triggered scheduler pass.
type CronHandler struct {
	runner ScanRunner
}

// NewCronHandler creates a new CronHandler.
func NewCronHandler(runner ScanRunner) *CronHandler {
	return &CronHandler{runner: runner}
}

// CheckReminders handles GET /api/cron/check-reminders - run one complete
// scan-dispatch-update pass and report the number of due reminders scanned.
func (h *CronHandler) CheckReminders(w http.ResponseWriter, r *http.Request) {
	processed, err := h.runner.RunScanPass(r.Context())
	if err != nil {
		response.InternalError(w, r, "scan pass failed")
		return
	}
	response.JSON(w, r, http.StatusOK, models.CronResult{OK: true, Processed: processed})
}
