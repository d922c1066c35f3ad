package models

// DeletionRequest is the body of POST /v1/privacy/deletion-requests.
type DeletionRequest struct {
	UserID          string `json:"userId"`
	ConfirmDeletion bool   `json:"confirmDeletion"`
}

// ErasureReceipt confirms a deletion request and explains what happens next.
type ErasureReceipt struct {
	UserID          string    `json:"userId"`
	RequestedAt     Timestamp `json:"requestedAt"`
	PurgeEligibleAt Timestamp `json:"purgeEligibleAt"`
	RetentionNotice string    `json:"retentionNotice"`
	NextSteps       []string  `json:"nextSteps"`
	Contact         string    `json:"contact"`
}

// DeletionStatus reports the erasure state of a user.
type DeletionStatus struct {
	UserID                string     `json:"userId"`
	Status                string     `json:"status"`
	DeletionRequested     bool       `json:"deletionRequested"`
	RequestedAt           *Timestamp `json:"requestedAt,omitempty"`
	EstimatedDeletionDate *Timestamp `json:"estimatedDeletionDate,omitempty"`
}
