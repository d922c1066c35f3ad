package models

// ConsentUpdate is the body of POST /v1/privacy/consents. Either Type or
// ResearchModule identifies the consent being changed.
type ConsentUpdate struct {
	UserID         string `json:"userId"`
	Type           string `json:"type,omitempty"`
	ResearchModule string `json:"researchModule,omitempty"`
	Consented      bool   `json:"consented"`
}

// ConsentFlags is the current consent projection for a user.
type ConsentFlags struct {
	UserID                string `json:"userId"`
	GDPRConsent           bool   `json:"gdprConsent"`
	AIProcessingConsent   bool   `json:"aiProcessingConsent"`
	DataDeletionRequested bool   `json:"dataDeletionRequested"`
}

// ConsentEvent is one recorded consent change.
type ConsentEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Type           string    `json:"type"`
	Granted        bool      `json:"granted"`
	ResearchModule *string   `json:"researchModule,omitempty"`
	CreatedAt      Timestamp `json:"createdAt"`
}
