// internal/workers/intake/advance-intake-turn/models.go
package advanceintaketurn

import "loan-intake/internal/models"

// Input carries the application between turns as a process variable.
type Input struct {
	Application *models.Application `json:"application"`
	Message     string              `json:"message"`
}

type Output struct {
	Application *models.Application `json:"application"`
	Reply       string              `json:"reply"`
	Prompt      string              `json:"prompt,omitempty"`
	Complete    bool                `json:"complete"`
	OfferIssued bool                `json:"offerIssued"`
}
