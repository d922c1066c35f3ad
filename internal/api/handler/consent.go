package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knuut/knuut-api/internal/api/models"
	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/consent"
)

// ConsentHandler handles consent endpoints.
type ConsentHandler struct {
	consents *consent.Service
}

// NewConsentHandler creates a new ConsentHandler.
func NewConsentHandler(consents *consent.Service) *ConsentHandler {
	return &ConsentHandler{consents: consents}
}

// UpdateConsent handles POST /v1/privacy/consents.
func (h *ConsentHandler) UpdateConsent(w http.ResponseWriter, r *http.Request) {
	var input models.ConsentUpdate
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

	var err error
	if input.ResearchModule != "" {
		_, err = h.consents.RecordResearchConsent(r.Context(), input.UserID, input.ResearchModule, input.Consented)
	} else {
		_, err = h.consents.RecordConsent(r.Context(), input.UserID, consent.Type(input.Type), input.Consented)
	}
	if err != nil {
		if errors.Is(err, consent.ErrInvalidType) {
			response.BadRequest(w, r, "unrecognized consent type", []models.FieldError{
				{Field: "type", Message: "must be gdpr or ai_processing", Code: "INVALID"},
			})
			return
		}
		response.ServiceUnavailable(w, r, "unable to record consent, please try again later")
		return
	}

	h.writeCurrentFlags(w, r, input.UserID)
}

// GetConsent handles GET /v1/privacy/consents.
func (h *ConsentHandler) GetConsent(w http.ResponseWriter, r *http.Request) {
	userID := subjectUserID(r)
	if userID == "" {
		response.BadRequest(w, r, "userId is required", nil)
		return
	}

	h.writeCurrentFlags(w, r, userID)
}

func (h *ConsentHandler) writeCurrentFlags(w http.ResponseWriter, r *http.Request, userID string) {
	flags, err := h.consents.CurrentConsent(r.Context(), userID)
	if err != nil {
		response.ServiceUnavailable(w, r, "unable to read consent, please try again later")
		return
	}

	response.JSON(w, r, http.StatusOK, models.ConsentFlags{
		UserID:                userID,
		GDPRConsent:           flags.GDPR,
		AIProcessingConsent:   flags.AIProcessing,
		DataDeletionRequested: flags.DataDeletionRequested,
	})
}
