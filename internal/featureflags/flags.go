// Package featureflags provides runtime kill switches for the privacy
// pipeline. Flags are small, rarely written, and read on hot paths, so the
// service keeps a short-lived in-memory cache in front of the repository.
package featureflags

import (
	"time"
)

// Well-known feature flag keys.
const (
	// FlagDisableAIAssist turns off the phrase suggestion path. Requests
	// fail closed; nothing reaches the language model provider.
	FlagDisableAIAssist = "disable_ai_assist"

	// FlagDisableRetentionSweep pauses the purge batch job. Candidates
	// accumulate and are processed once the flag is cleared.
	FlagDisableRetentionSweep = "disable_retention_sweep"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil, not found, or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// DefaultFlags returns the default feature flags for the application. Both
// kill switches default to off: the pipeline runs unless explicitly paused.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	return map[string]*Flag{
		FlagDisableAIAssist: {
			Key:       FlagDisableAIAssist,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableRetentionSweep: {
			Key:       FlagDisableRetentionSweep,
			Value:     false,
			UpdatedAt: now,
		},
	}
}
