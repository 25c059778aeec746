// internal/workers/intake/advance-intake-turn/handler.go
package advanceintaketurn

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-intake/internal/common/camunda"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"
)

const (
	TaskType = "advance-intake-turn"
)

type Handler struct {
	engine *intake.Engine
	runner *camunda.Runner
	logger logger.Logger
}

func NewHandler(config *Config, engine *intake.Engine, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		engine: engine,
		runner: camunda.NewRunner(TaskType, config.Timeout, obs, log),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Run(client, job, func(ctx context.Context) (interface{}, error) {
		input, err := decodeInput(job.Variables)
		if err != nil {
			return nil, err
		}
		return h.Execute(ctx, input)
	})
}

func decodeInput(variables string) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidApplicationStateError(err)
	}
	return &input, nil
}

// Execute runs one turn against the application carried in input. A missing
// application starts a new one.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, apperrors.NewInvalidTurnInputError("message is blank")
	}

	app := input.Application
	if app == nil {
		app = &models.Application{}
	}

	out := h.engine.Turn(ctx, app, input.Message)

	h.logger.Info("turn advanced", map[string]interface{}{
		"changed":     out.Changed,
		"complete":    out.Complete,
		"offerIssued": out.OfferIssued,
	})

	return &Output{
		Application: app,
		Reply:       out.Reply,
		Prompt:      out.Prompt,
		Complete:    out.Complete,
		OfferIssued: out.OfferIssued,
	}, nil
}
