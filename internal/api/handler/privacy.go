// Package handler provides HTTP handlers for the knuut API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knuut/knuut-api/internal/api/models"
	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/lifecycle"
)

// PrivacyHandler handles deletion request endpoints.
type PrivacyHandler struct {
	lifecycle *lifecycle.Service
}

// NewPrivacyHandler creates a new PrivacyHandler.
func NewPrivacyHandler(lifecycleService *lifecycle.Service) *PrivacyHandler {
	return &PrivacyHandler{lifecycle: lifecycleService}
}

// CreateDeletionRequest handles POST /v1/privacy/deletion-requests.
func (h *PrivacyHandler) CreateDeletionRequest(w http.ResponseWriter, r *http.Request) {
	var input models.DeletionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if input.UserID == "" {
		response.BadRequest(w, r, "userId is required", []models.FieldError{
			{Field: "userId", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	receipt, err := h.lifecycle.RequestErasure(r.Context(), input.UserID, input.ConfirmDeletion)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrConfirmationRequired):
			response.BadRequest(w, r, "deletion must be explicitly confirmed", []models.FieldError{
				{Field: "confirmDeletion", Message: "must be true", Code: "CONFIRMATION_REQUIRED"},
			})
		case errors.Is(err, lifecycle.ErrUserNotFound):
			response.NotFound(w, r, "user not found")
		case errors.Is(err, lifecycle.ErrErasurePending):
			response.Conflict(w, r, "deletion already requested")
		default:
			response.ServiceUnavailable(w, r, "unable to process deletion request, please try again later")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.ErasureReceipt{
		UserID:          receipt.UserID,
		RequestedAt:     models.Timestamp(receipt.RequestedAt),
		PurgeEligibleAt: models.Timestamp(receipt.PurgeEligibleAt),
		RetentionNotice: receipt.RetentionNotice,
		NextSteps:       receipt.NextSteps,
		Contact:         receipt.Contact,
	})
}

// GetDeletionStatus handles GET /v1/privacy/deletion-requests/status.
func (h *PrivacyHandler) GetDeletionStatus(w http.ResponseWriter, r *http.Request) {
	userID := subjectUserID(r)
	if userID == "" {
		response.BadRequest(w, r, "userId is required", nil)
		return
	}

	status, err := h.lifecycle.DeletionStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.ServiceUnavailable(w, r, "unable to read deletion status, please try again later")
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeletionStatus{
		UserID:                status.UserID,
		Status:                string(status.Status),
		DeletionRequested:     status.DeletionRequested,
		RequestedAt:           models.TimestampPtr(status.RequestedAt),
		EstimatedDeletionDate: models.TimestampPtr(status.EstimatedDeletionDate),
	})
}

// subjectUserID extracts the subject user of a request from the userId
// query parameter or the X-User-Id header.
func subjectUserID(r *http.Request) string {
	if userID := r.URL.Query().Get("userId"); userID != "" {
		return userID
	}
	return r.Header.Get("X-User-Id")
}
