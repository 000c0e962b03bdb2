package querypostgresql

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/repository"
	"bulkbuddy-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-postgresql"
)

type Handler struct {
	config       *Config
	store        *repository.Store
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *repository.Store, schema *validation.SchemaValidator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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
	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.store, queryType, queries.Params{
		UserID:    input.UserID,
		PlanID:    input.PlanID,
		RecipeIDs: input.RecipeIDs,
	})
	if err != nil {
		if stderrors.Is(err, queries.ErrMissingParam) {
			return nil, errors.NewInvalidNutritionInputError(err.Error())
		}
		return nil, err
	}

	h.logger.Debug("query completed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
		"execTime":  execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
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
