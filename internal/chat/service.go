package chat

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"
)

// OfferListener is told about every newly issued offer.
type OfferListener interface {
	OfferIssued(ctx context.Context, event models.OfferEvent) error
}

// ListenerFunc adapts a function to OfferListener.
type ListenerFunc func(ctx context.Context, event models.OfferEvent) error

func (f ListenerFunc) OfferIssued(ctx context.Context, event models.OfferEvent) error {
	return f(ctx, event)
}

// Reply is the result of one Send.
type Reply struct {
	intake.TurnOutcome
	ApplicationID string                `json:"applicationId"`
	Application   *models.Application   `json:"application"`
	Panel         []intake.PanelSection `json:"panel"`
}

type Service struct {
	engine    *intake.Engine
	session   *Session
	listeners []OfferListener
	obs       *observability.Observability
	logger    logger.Logger
}

type Option func(*Service)

func WithListeners(listeners ...OfferListener) Option {
	return func(s *Service) {
		for _, l := range listeners {
			if l != nil {
				s.listeners = append(s.listeners, l)
			}
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

func NewService(engine *intake.Engine, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		engine:  engine,
		session: NewSession(),
		logger:  log.WithFields(map[string]interface{}{"component": "chat"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send runs one turn. Turns are serialized: the session lock is held while
// the engine runs.
func (s *Service) Send(ctx context.Context, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewInvalidTurnInputError("message is blank")
	}

	start := time.Now()
	ctx, span := s.obs.StartSpan(ctx, "intake.turn")
	defer span.End()

	sess := s.session

	sess.mu.Lock()
	sess.append(models.SpeakerUser, text, start.UTC())
	out := s.engine.Turn(ctx, sess.app, text)
	sess.append(models.SpeakerBot, out.Reply, time.Now().UTC())

	reply := &Reply{
		TurnOutcome:   out,
		ApplicationID: sess.id,
		Application:   sess.app.Clone(),
	}
	sess.mu.Unlock()

	reply.Panel = intake.Panel(reply.Application)
	status := turnStatus(out)
	span.SetAttributes(
		attribute.String("application.id", reply.ApplicationID),
		attribute.String("turn.status", status),
	)
	s.obs.RecordTurn(ctx, time.Since(start), status)

	s.logger.Debug("Turn processed", map[string]interface{}{
		"applicationId": reply.ApplicationID,
		"changed":       out.Changed,
		"complete":      out.Complete,
	})

	if out.OfferIssued {
		s.notify(ctx, models.OfferEvent{
			ApplicationID: reply.ApplicationID,
			Application:   *reply.Application.Clone(),
			IssuedAt:      time.Now().UTC(),
		})
	}
	return reply, nil
}

func (s *Service) notify(ctx context.Context, event models.OfferEvent) {
	for _, l := range s.listeners {
		if err := l.OfferIssued(ctx, event); err != nil {
			s.logger.Warn("Offer listener failed", map[string]interface{}{
				"applicationId": event.ApplicationID,
				"error":         err,
			})
		}
	}
}

// Reset discards the application and transcript and starts a new session.
func (s *Service) Reset() Snapshot {
	s.session.mu.Lock()
	old := s.session.id
	s.session.reset()
	s.session.mu.Unlock()

	s.logger.Info("Session reset", map[string]interface{}{"previousApplicationId": old})
	return s.session.Snapshot()
}

func (s *Service) Snapshot() Snapshot {
	return s.session.Snapshot()
}

// NextPrompt is the question the bot would ask now, or "" when complete.
func (s *Service) NextPrompt() string {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()
	prompt, _ := intake.NextPrompt(s.session.app)
	return prompt
}

func turnStatus(out intake.TurnOutcome) string {
	switch {
	case !out.Complete:
		return "prompted"
	case out.Reply == intake.OfferUnavailableReply:
		return "offer_failed"
	default:
		return "completed"
	}
}
