package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/knuut/knuut-api/internal/api/models"
	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/sweep"
)

// SweepHandler handles the internal retention sweep trigger.
type SweepHandler struct {
	sweeper *sweep.Sweeper
}

// NewSweepHandler creates a new SweepHandler.
func NewSweepHandler(sweeper *sweep.Sweeper) *SweepHandler {
	return &SweepHandler{sweeper: sweeper}
}

// TriggerSweep handles POST /v1/internal/retention-sweep. The route sits
// behind the CronAuth middleware; by the time this runs the caller is the
// scheduler.
func (h *SweepHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweeper.Run(r.Context(), time.Now().UTC())
	if err != nil {
		response.ServiceUnavailable(w, r, "retention sweep failed, see server logs")
		return
	}

	deleted := result.Purged
	if deleted == nil {
		deleted = []string{}
	}
	failed := result.Failed
	if failed == nil {
		failed = []string{}
	}

	message := fmt.Sprintf("Processed %d user deletions", len(deleted))
	if result.Skipped {
		message = "Retention sweep is disabled"
	}

	response.JSON(w, r, http.StatusOK, models.SweepResponse{
		Success:      true,
		Message:      message,
		DeletedUsers: len(deleted),
		Errors:       len(failed),
		Details: models.SweepDetails{
			Deleted: deleted,
			Errors:  failed,
			Skipped: result.Skipped,
		},
	})
}
