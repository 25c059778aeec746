// Package chat holds the single interactive intake session and the service
// that runs turns against it.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-intake/internal/models"
)

// Session is one applicant's application and transcript.
type Session struct {
	mu         sync.Mutex
	id         string
	app        *models.Application
	transcript []models.Message
	startedAt  time.Time
}

func NewSession() *Session {
	s := &Session{}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = uuid.New().String()
	s.app = &models.Application{}
	s.transcript = nil
	s.startedAt = time.Now().UTC()
}

// Snapshot is a consistent copy of the session at one point in time.
type Snapshot struct {
	ApplicationID string              `json:"applicationId"`
	Application   *models.Application `json:"application"`
	Transcript    []models.Message    `json:"transcript"`
	StartedAt     time.Time           `json:"startedAt"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ApplicationID: s.id,
		Application:   s.app.Clone(),
		Transcript:    append([]models.Message(nil), s.transcript...),
		StartedAt:     s.startedAt,
	}
}

func (s *Session) append(speaker, text string, at time.Time) {
	s.transcript = append(s.transcript, models.Message{Speaker: speaker, Text: text, At: at})
}
