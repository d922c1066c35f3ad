package models

// SweepResponse is the result of a retention sweep trigger. The shape
// mirrors what the scheduler expects: counts at the top level, identifier
// lists in the details.
type SweepResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	DeletedUsers int          `json:"deleted_users"`
	Errors       int          `json:"errors"`
	Details      SweepDetails `json:"details"`
}

// SweepDetails lists the per-user outcome of one sweep run.
type SweepDetails struct {
	Deleted []string `json:"deleted"`
	Errors  []string `json:"errors"`
	Skipped bool     `json:"skipped,omitempty"`
}
