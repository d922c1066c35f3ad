package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knuut/knuut-api/internal/api/models"
	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/assist"
	"github.com/knuut/knuut-api/internal/privacy"
)

// AssistHandler handles phrase suggestion endpoints.
type AssistHandler struct {
	assist *assist.Service
}

// NewAssistHandler creates a new AssistHandler.
func NewAssistHandler(assistService *assist.Service) *AssistHandler {
	return &AssistHandler{assist: assistService}
}

// SuggestWorkplacePhrase handles POST /v1/assist/workplace-phrase.
func (h *AssistHandler) SuggestWorkplacePhrase(w http.ResponseWriter, r *http.Request) {
	var input models.PhraseRequest
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
	if input.Text == "" {
		response.BadRequest(w, r, "text is required", []models.FieldError{
			{Field: "text", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	suggestion, err := h.assist.WorkplacePhrase(r.Context(), assist.PhraseRequest{
		UserID:  input.UserID,
		Text:    input.Text,
		Context: input.Context,
	})
	if err != nil {
		switch {
		case errors.Is(err, assist.ErrConsentRequired):
			response.Forbidden(w, r, "AI processing consent is required for phrase suggestions")
		case errors.Is(err, assist.ErrAssistDisabled):
			response.ServiceUnavailable(w, r, "phrase suggestions are temporarily disabled")
		case errors.Is(err, privacy.ErrTooManyEmails), errors.Is(err, privacy.ErrTooManyPhones):
			response.BadRequest(w, r, "text contains too much personal information", []models.FieldError{
				{Field: "text", Message: "remove personal contact details", Code: "UNSAFE_INPUT"},
			})
		default:
			response.ServiceUnavailable(w, r, "phrase suggestion unavailable, please try again later")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.PhraseSuggestion{
		Phrase: suggestion.Phrase,
		Model:  suggestion.Model,
	})
}
