// internal/workers/offer/record-loan-offer/models.go
package recordloanoffer

import "loan-intake/internal/models"

type Input struct {
	ApplicationID string              `json:"applicationId,omitempty"`
	Application   *models.Application `json:"application"`
}

type Output struct {
	OfferID       string `json:"offerId"`
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	RecordedAt    string `json:"recordedAt"` // ISO 8601
}

const StatusRecorded = "recorded"
