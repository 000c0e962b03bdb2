package queryelasticsearch

import (
	"context"
	"encoding/json"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-elasticsearch"
)

// RecipeSearcher is satisfied by *queries.Searcher.
type RecipeSearcher interface {
	Execute(ctx context.Context, q queries.RecipeQuery) (*queries.QueryResult, error)
}

type Handler struct {
	config       *Config
	searcher     RecipeSearcher
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, searcher RecipeSearcher, schema *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
	searchType := models.SearchType(input.QueryType)
	switch searchType {
	case models.SearchTypeRecipesByCalorieBand, models.SearchTypeRecipeSearch, models.SearchTypeRecipeDetails:
	default:
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	q := queries.RecipeQuery{
		Index:          input.IndexName,
		SearchType:     searchType,
		Text:           input.Filters.Text,
		RecipeID:       input.Filters.RecipeID,
		MealType:       input.Filters.MealType,
		Diet:           input.Filters.Diet,
		MinCalories:    input.Filters.MinCalories,
		MaxCalories:    input.Filters.MaxCalories,
		TargetCalories: input.Filters.TargetCalories,
		ExcludeIDs:     input.Filters.ExcludeIDs,
		From:           input.Pagination.From,
		Size:           input.Pagination.Size,
	}

	result, err := h.searcher.Execute(ctx, q)
	if err != nil {
		metrics.RecordSearch(input.QueryType, string(errors.CodeOf(err)))
		return nil, err
	}
	metrics.RecordSearch(input.QueryType, "ok")

	if searchType == models.SearchTypeRecipeDetails && len(result.Recipes) == 0 {
		return nil, errors.NewRecipeNotFoundError(input.Filters.RecipeID)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"queryType": input.QueryType,
		"totalHits": result.TotalHits,
		"took":      result.Took,
	})

	return &Output{
		Recipes:   result.Recipes,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
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
