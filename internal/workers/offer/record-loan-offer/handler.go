// internal/workers/offer/record-loan-offer/handler.go
package recordloanoffer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"loan-intake/internal/common/camunda"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"
)

const (
	TaskType = "record-loan-offer"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateOffer       = errors.New("DUPLICATE_OFFER")
	ErrNoOffer              = errors.New("APPLICATION_INCOMPLETE")
)

type Handler struct {
	db     *sql.DB
	runner *camunda.Runner
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		db:     db,
		runner: camunda.NewRunner(TaskType, config.Timeout, obs, log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context) (interface{}, error) {
		var input Input
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			return nil, apperrors.NewInvalidApplicationStateError(err)
		}
		return h.Execute(ctx, &input)
	})
}

// OfferIssued records the offer of a chat session.
func (h *Handler) OfferIssued(ctx context.Context, event models.OfferEvent) error {
	app := event.Application
	_, err := h.Execute(ctx, &Input{ApplicationID: event.ApplicationID, Application: &app})
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	app := input.Application
	if app == nil || app.FinalOffer == nil {
		prompt := intake.PromptCity
		if app != nil {
			prompt, _ = intake.NextPrompt(app)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoOffer, apperrors.NewApplicationIncompleteError(prompt))
	}

	applicationID := input.ApplicationID
	if applicationID == "" {
		applicationID = uuid.New().String()
	}

	var exists bool
	err := h.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM loan_offers WHERE application_id = $1)`,
		applicationID,
	).Scan(&exists)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(
			fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err))
	}
	if exists {
		return nil, fmt.Errorf("%w: %w", ErrDuplicateOffer, apperrors.NewDuplicateOfferError(applicationID))
	}

	offerID := uuid.New().String()
	recordedAt := h.now()

	applicationJSON, err := json.Marshal(app)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(
			fmt.Errorf("%w: marshal application: %v", ErrDatabaseInsertFailed, err))
	}

	offer := app.FinalOffer
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO loan_offers (
			offer_id, application_id, city, employment, property_type,
			lenders, amount, emi, roi, tenure_years, application, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		offerID,
		applicationID,
		app.City,
		string(app.Employment),
		string(app.PropertyType),
		pq.Array(app.FilteredLenders),
		offer.Amount,
		offer.EMI,
		offer.ROI,
		offer.Tenure,
		applicationJSON,
		recordedAt,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(
			fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err))
	}

	// Audit entry is best-effort.
	details, err := json.Marshal(map[string]interface{}{
		"offerId": offerID,
		"lenders": app.FilteredLenders,
		"amount":  offer.Amount,
	})
	if err != nil {
		details = []byte("{}")
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"loan_application",
		applicationID,
		"offer_recorded",
		details,
		recordedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
		})
	}

	h.logger.Info("loan offer recorded", map[string]interface{}{
		"offerId":       offerID,
		"applicationId": applicationID,
		"amount":        offer.Amount,
	})

	return &Output{
		OfferID:       offerID,
		ApplicationID: applicationID,
		Status:        StatusRecorded,
		RecordedAt:    recordedAt.Format(time.RFC3339),
	}, nil
}
