package generatemealplan

import (
	"context"
	"encoding/json"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
	"bulkbuddy-workers/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-meal-plan"
)

type RecipeSearcher interface {
	Execute(ctx context.Context, q queries.RecipeQuery) (*queries.QueryResult, error)
}

type Handler struct {
	config       *Config
	calc         *nutrition.Calculator
	searcher     RecipeSearcher
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, calc *nutrition.Calculator, searcher RecipeSearcher, schema *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		calc:         calc,
		searcher:     searcher,
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
	if res := validation.ValidateCalories("targetCalories", input.TargetCalories); !res.Valid {
		return nil, errors.NewInvalidNutritionInputError(res.Summary())
	}

	slots := h.calc.PartitionMealSlots(input.TargetCalories)
	excluded := append([]string{}, input.ExcludeRecipeIDs...)

	output := &Output{MealSlots: slots}
	items := make([]nutrition.NutritionItem, 0, 3)
	servings := make([]float64, 0, 3)

	for _, slot := range slots.Slots() {
		recipe, err := h.pick(ctx, slot, input.Diet, excluded)
		if err != nil {
			return nil, err
		}
		// one recipe per slot for the whole plan
		excluded = append(excluded, recipe.ID)

		output.Meals = append(output.Meals, PlannedMeal{
			Slot:     slot.Name,
			Band:     slot.MealSlot,
			Recipe:   *recipe,
			Calories: recipe.CaloriesPerServing,
		})
		item := recipe.NutritionItem()
		output.Items = append(output.Items, models.MealPlanItem{
			Slot:         slot.Name,
			RecipeID:     recipe.ID,
			ServingGrams: item.ServingGrams,
		})
		items = append(items, item)
		servings = append(servings, item.ServingGrams)
	}

	output.Nutrition = h.calc.AggregateNutrition(items, servings)
	metrics.RecordCalculation(TaskType)

	h.logger.Info("meal plan generated", map[string]interface{}{
		"userId":         input.UserID,
		"targetCalories": input.TargetCalories,
		"planCalories":   output.Nutrition.Totals.Calories,
	})

	return output, nil
}

// pick returns the best-ranked candidate whose per-serving calories fall
// inside the slot band.
func (h *Handler) pick(ctx context.Context, slot nutrition.NamedSlot, diet, excluded []string) (*models.RecipeDocument, error) {
	result, err := h.searcher.Execute(ctx, queries.RecipeQuery{
		Index:          h.config.RecipeIndex,
		SearchType:     models.SearchTypeRecipesByCalorieBand,
		MealType:       slot.Name,
		Diet:           diet,
		MinCalories:    slot.Min,
		MaxCalories:    slot.Max,
		TargetCalories: slot.Target,
		ExcludeIDs:     excluded,
		Size:           h.config.CandidatesPerSlot,
	})
	if err != nil {
		return nil, err
	}

	for i := range result.Recipes {
		if slot.Contains(result.Recipes[i].CaloriesPerServing) {
			return &result.Recipes[i], nil
		}
	}

	h.logger.Warn("no recipe fits meal slot", map[string]interface{}{
		"slot":       slot.Name,
		"min":        slot.Min,
		"max":        slot.Max,
		"candidates": len(result.Recipes),
	})
	return nil, errors.NewNoMealCandidatesError(slot.Name, slot.Min, slot.Max)
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
