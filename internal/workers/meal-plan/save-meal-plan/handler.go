package savemealplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-meal-plan"
)

// MealPlanStore is satisfied by *repository.MealPlanRepository.
type MealPlanStore interface {
	Create(ctx context.Context, plan *models.MealPlan, summary interface{}) error
}

type Handler struct {
	config       *Config
	plans        MealPlanStore
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, plans MealPlanStore, schema *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		plans:        plans,
		schema:       schema,
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
	if err := validatePlan(input); err != nil {
		return nil, err
	}

	plan := &models.MealPlan{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		Name:           strings.TrimSpace(input.Name),
		TargetCalories: input.TargetCalories,
		Items:          input.Items,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.plans.Create(ctx, plan, input.Nutrition); err != nil {
		return nil, err
	}

	h.logger.Info("meal plan saved", map[string]interface{}{
		"mealPlanId": plan.ID,
		"userId":     plan.UserID,
		"itemCount":  len(plan.Items),
	})

	return &Output{
		MealPlanID: plan.ID,
		ItemCount:  len(plan.Items),
		CreatedAt:  plan.CreatedAt.Format(time.RFC3339),
	}, nil
}

func validatePlan(input *Input) error {
	switch {
	case input.UserID == "":
		return errors.NewInvalidNutritionInputError("userId is required")
	case strings.TrimSpace(input.Name) == "":
		return errors.NewInvalidNutritionInputError("name is required")
	case len(input.Items) == 0:
		return errors.NewInvalidNutritionInputError("a meal plan needs at least one item")
	}
	if input.TargetCalories != 0 {
		if res := validation.ValidateCalories("targetCalories", input.TargetCalories); !res.Valid {
			return errors.NewInvalidNutritionInputError(res.Summary())
		}
	}
	for i, item := range input.Items {
		if item.RecipeID == "" || item.Slot == "" {
			return errors.NewInvalidNutritionInputError(fmt.Sprintf("items[%d]: slot and recipeId are required", i))
		}
		if item.ServingGrams < 0 {
			return errors.NewInvalidNutritionInputError(fmt.Sprintf("items[%d]: servingGrams must not be negative", i))
		}
	}
	return nil
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
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
