package sendplansummary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bulkbuddy-workers/internal/common/aws"
	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-plan-summary"
)

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, msg aws.Email) (string, error)
}

// SMSSender is satisfied by *aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type ContactStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

type HandlerOptions struct {
	Config   *Config
	Contacts ContactStore
	Email    EmailSender
	SMS      SMSSender
	Schema   *validation.SchemaValidator
	Logger   logger.Logger
}

type Handler struct {
	config       *Config
	contacts     ContactStore
	email        EmailSender
	sms          SMSSender
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       opts.Config,
		contacts:     opts.Contacts,
		email:        opts.Email,
		sms:          opts.SMS,
		schema:       opts.Schema,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if res := h.schema.Validate([]byte(job.Variables)); !res.Valid {
		return h.failJob(client, job, errors.NewInputSchemaViolationError(res.Summary()))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(client, job, errors.NewParseError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.failJob(client, job, err)
	}
	return h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidNutritionInputError("userId is required")
	}

	user, err := h.contacts.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeProfileNotFound {
			h.logger.Warn("recipient not found", map[string]interface{}{
				"userId": input.UserID,
			})
			return &Output{Status: StatusDisabled, Notifications: []models.Notification{}}, nil
		}
		return nil, err
	}

	msg, err := render(input)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInternal, "Failed to render plan summary", err.Error(), false)
	}

	output := &Output{Status: StatusDisabled, Notifications: []models.Notification{}}

	if h.config.EmailEnabled && h.email != nil && user.Email != "" {
		messageID, err := h.email.SendEmail(ctx, aws.Email{
			From:     h.config.FromEmail,
			To:       user.Email,
			Subject:  msg.Subject,
			TextBody: msg.Text,
			HTMLBody: msg.HTML,
		})
		if err != nil {
			// email is the primary channel; let the engine retry
			return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
		}
		output.Notifications = append(output.Notifications, notification(user.ID, ChannelEmail, StatusSent, messageID))
	}

	if input.SendSMS && h.config.SMSEnabled && h.sms != nil && user.Phone != "" {
		messageID, err := h.sms.SendSMS(ctx, user.Phone, msg.SMS)
		status := StatusSent
		if err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":  err,
				"userId": user.ID,
			})
			status = StatusFailed
		}
		output.Notifications = append(output.Notifications, notification(user.ID, ChannelSMS, status, messageID))
	}

	output.Status = overallStatus(output.Notifications)

	h.logger.Info("plan summary processed", map[string]interface{}{
		"userId":     user.ID,
		"mealPlanId": input.MealPlanID,
		"status":     output.Status,
		"sent":       len(output.Notifications),
	})
	return output, nil
}

func notification(userID, channel, status, messageID string) models.Notification {
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Channel:   channel,
		Status:    status,
		MessageID: messageID,
	}
	if status == StatusSent {
		n.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	return n
}

// overallStatus is sent when any channel delivered, failed when every
// attempt failed and disabled when nothing was attempted.
func overallStatus(ns []models.Notification) string {
	if len(ns) == 0 {
		return StatusDisabled
	}
	for _, n := range ns {
		if n.Status == StatusSent {
			return StatusSent
		}
	}
	return StatusFailed
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
