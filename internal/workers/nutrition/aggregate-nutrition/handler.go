package aggregatenutrition

import (
	"context"
	"encoding/json"
	"fmt"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "aggregate-nutrition"
)

type RecipeStore interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Recipe, error)
}

type Handler struct {
	config       *Config
	calc         *nutrition.Calculator
	recipes      RecipeStore
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, calc *nutrition.Calculator, recipes RecipeStore, schema *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		calc:         calc,
		recipes:      recipes,
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
	count := len(input.Items) + len(input.Recipes)
	if h.config.MaxItems > 0 && count > h.config.MaxItems {
		return nil, errors.NewInvalidNutritionInputError(
			fmt.Sprintf("%d items exceed the limit of %d", count, h.config.MaxItems))
	}
	if res := validation.ValidateItems(input.Items); !res.Valid {
		return nil, errors.NewInvalidNutritionInputError(res.Summary())
	}
	if res := validation.ValidateServings(input.Servings, len(input.Items)); !res.Valid {
		return nil, errors.NewInvalidNutritionInputError(res.Summary())
	}

	items := make([]nutrition.NutritionItem, 0, count)
	servings := make([]float64, 0, count)
	items = append(items, input.Items...)
	servings = append(servings, input.Servings...)
	// pad so recipe servings line up with their items
	for len(servings) < len(input.Items) {
		servings = append(servings, 0)
	}

	if len(input.Recipes) > 0 {
		stored, err := h.loadRecipes(ctx, input.Recipes)
		if err != nil {
			return nil, err
		}
		for _, ref := range input.Recipes {
			if ref.ServingGrams < 0 {
				return nil, errors.NewInvalidNutritionInputError("recipe servingGrams must not be negative")
			}
			items = append(items, stored[ref.RecipeID].NutritionItem())
			servings = append(servings, ref.ServingGrams)
		}
	}

	summary := h.calc.AggregateNutrition(items, servings)
	metrics.RecordCalculation(TaskType)

	h.logger.Debug("nutrition aggregated", map[string]interface{}{
		"itemCount": summary.ItemCount,
		"calories":  summary.Totals.Calories,
	})

	return &Output{Nutrition: summary}, nil
}

func (h *Handler) loadRecipes(ctx context.Context, refs []RecipeRef) (map[string]models.Recipe, error) {
	if h.recipes == nil {
		return nil, errors.NewDatabaseConnectionFailedError(fmt.Errorf("recipe store not configured"))
	}
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.RecipeID == "" {
			return nil, errors.NewInvalidNutritionInputError("recipeId is required")
		}
		if !seen[ref.RecipeID] {
			seen[ref.RecipeID] = true
			ids = append(ids, ref.RecipeID)
		}
	}
	return h.recipes.GetByIDs(ctx, ids)
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
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
