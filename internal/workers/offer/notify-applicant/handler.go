// internal/workers/offer/notify-applicant/handler.go
package notifyapplicant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"loan-intake/internal/common/camunda"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/observability"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"
)

const (
	TaskType = "notify-applicant"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrNoOffer                = errors.New("APPLICATION_INCOMPLETE")
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	sesClient SESService
	snsClient SNSService
	runner    *camunda.Runner
	logger    logger.Logger
	now       func() time.Time
}

func NewHandler(config *Config, sesClient SESService, snsClient SNSService, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		sesClient: sesClient,
		snsClient: snsClient,
		runner:    camunda.NewRunner(TaskType, config.Timeout, obs, log),
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:       func() time.Time { return time.Now().UTC() },
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

// OfferIssued notifies the applicant of a chat session. A failed delivery is
// reported as an error so the caller can log it.
func (h *Handler) OfferIssued(ctx context.Context, event models.OfferEvent) error {
	app := event.Application
	output, err := h.Execute(ctx, &Input{ApplicationID: event.ApplicationID, Application: &app})
	if err != nil {
		return err
	}
	if output.Status == StatusFailed {
		return apperrors.NewNotificationSendFailedError("offer",
			fmt.Errorf("%w: application %s", ErrNotificationSendFailed, event.ApplicationID))
	}
	return nil
}

// Execute sends the offer summary by email and SMS, each only when enabled
// and the applicant stated a matching contact. A delivery failure yields
// StatusFailed rather than an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	app := input.Application
	if app == nil || app.FinalOffer == nil {
		prompt := intake.PromptCity
		if app != nil {
			prompt, _ = intake.NextPrompt(app)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoOffer, apperrors.NewApplicationIncompleteError(prompt))
	}

	body := intake.OfferSummary(app)
	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         h.now().Format(time.RFC3339),
	}

	if email := app.ContactEmail(); h.config.EmailEnabled && email != "" {
		if err := h.sendEmail(ctx, email, EmailSubject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			output.Status = StatusFailed
			return output, nil
		}
		output.EmailSent = true
	}

	if mobile := app.ContactMobile(); h.config.SMSEnabled && mobile != "" {
		if err := h.sendSMS(ctx, mobile, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			output.Status = StatusFailed
			return output, nil
		}
		output.SMSSent = true
	}

	if output.EmailSent || output.SMSSent {
		output.Status = StatusSent
	}

	h.logger.Info("applicant notified", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"notificationId": output.NotificationID,
		"status":         output.Status,
	})
	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(h.config.SenderID),
			},
		}
	}
	_, err := h.snsClient.Publish(ctx, input)
	return err
}
