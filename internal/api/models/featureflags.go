package models

// FeatureFlag represents one feature flag in API responses.
type FeatureFlag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt Timestamp   `json:"updatedAt"`
}

// FeatureFlagList is the response of GET /v1/admin/feature-flags.
type FeatureFlagList struct {
	Items []FeatureFlag `json:"items"`
}

// FeatureFlagUpdate is a single flag update.
type FeatureFlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FeatureFlagUpdateRequest is the body of PUT /v1/admin/feature-flags.
type FeatureFlagUpdateRequest struct {
	Updates []FeatureFlagUpdate `json:"updates"`
	Reason  string              `json:"reason"`
}
