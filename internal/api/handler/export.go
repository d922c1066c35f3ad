package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/export"
	"github.com/knuut/knuut-api/internal/lifecycle"
)

// ExportHandler handles data export endpoints.
type ExportHandler struct {
	compiler *export.Compiler
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(compiler *export.Compiler) *ExportHandler {
	return &ExportHandler{compiler: compiler}
}

// GetExport handles GET /v1/privacy/export. The bundle is served as a
// downloadable JSON document.
func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	userID := subjectUserID(r)
	if userID == "" {
		response.BadRequest(w, r, "userId is required", nil)
		return
	}

	bundle, err := h.compiler.Export(r.Context(), userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.ServiceUnavailable(w, r, "unable to compile data export, please try again later")
		return
	}

	filename := fmt.Sprintf("knuut-data-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	response.JSON(w, r, http.StatusOK, bundle)
}
