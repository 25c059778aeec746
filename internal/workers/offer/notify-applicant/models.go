// internal/workers/offer/notify-applicant/models.go
package notifyapplicant

import "loan-intake/internal/models"

type Input struct {
	ApplicationID string              `json:"applicationId,omitempty"`
	Application   *models.Application `json:"application"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const EmailSubject = "Your home loan offer"
