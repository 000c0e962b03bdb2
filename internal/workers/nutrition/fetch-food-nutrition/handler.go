package fetchfoodnutrition

import (
	"context"
	"encoding/json"
	"strings"

	"bulkbuddy-workers/internal/common/database"
	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/nutrition"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "fetch-food-nutrition"
)

// FoodLookup is satisfied by *nutritionapi.Registry.
type FoodLookup interface {
	Names() []string
	Lookup(ctx context.Context, provider, query string) (*nutrition.NutritionItem, string, error)
}

type HandlerOptions struct {
	Config    *Config
	Providers FoodLookup
	Redis     *redis.Client
	Schema    *validation.SchemaValidator
	Logger    logger.Logger
}

type Handler struct {
	config       *Config
	providers    FoodLookup
	redis        *redis.Client
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       opts.Config,
		providers:    opts.Providers,
		redis:        opts.Redis,
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
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidNutritionInputError("query is required")
	}

	provider := strings.ToLower(input.Provider)
	if provider == "" {
		if names := h.providers.Names(); len(names) > 0 {
			provider = names[0]
		}
	}

	cacheKey := database.ProviderCacheKey(provider, strings.ToLower(query))
	var cached nutrition.NutritionItem
	if database.GetJSON(ctx, h.redis, cacheKey, &cached) {
		h.logger.Debug("cache hit", map[string]interface{}{"key": cacheKey})
		return &Output{Food: cached, Provider: provider, Cached: true}, nil
	}

	item, provider, err := h.providers.Lookup(ctx, provider, query)
	if err != nil {
		return nil, err
	}

	if err := database.SetJSON(ctx, h.redis, cacheKey, item, h.config.CacheTTL); err != nil {
		h.logger.Warn("failed to cache food lookup", map[string]interface{}{
			"key":   cacheKey,
			"error": err,
		})
	}

	return &Output{Food: *item, Provider: provider}, nil
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
