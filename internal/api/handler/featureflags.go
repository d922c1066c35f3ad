package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/knuut/knuut-api/internal/api/models"
	"github.com/knuut/knuut-api/internal/api/response"
	"github.com/knuut/knuut-api/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.service.GetAllFlags(r.Context())

	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]models.FeatureFlag, 0, len(keys))
	for _, k := range keys {
		f := flags[k]
		items = append(items, models.FeatureFlag{
			Key:       f.Key,
			Value:     f.Value,
			UpdatedAt: models.Timestamp(f.UpdatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, models.FeatureFlagList{Items: items})
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var input models.FeatureFlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}
	if len(input.Updates) == 0 {
		response.BadRequest(w, r, "updates is required", []models.FieldError{
			{Field: "updates", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	flags := make([]*featureflags.Flag, 0, len(input.Updates))
	for _, u := range input.Updates {
		if u.Key == "" {
			response.BadRequest(w, r, "flag key is required", []models.FieldError{
				{Field: "updates.key", Message: "required", Code: "REQUIRED"},
			})
			return
		}
		flags = append(flags, &featureflags.Flag{Key: u.Key, Value: u.Value})
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		response.ServiceUnavailable(w, r, "unable to update feature flags, please try again later")
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
