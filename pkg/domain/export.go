package domain

import "time"

// Export is a finalized record handed to the export collaborator.
type Export struct {
	ID          string            `json:"id"`
	PartyID     string            `json:"party_id"`
	Subject     string            `json:"subject"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Fields      map[string]string `json:"fields"`
}
