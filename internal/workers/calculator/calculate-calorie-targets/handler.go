package calculatecalorietargets

import (
	"context"
	"encoding/json"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/common/validation"
	"bulkbuddy-workers/internal/nutrition"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-calorie-targets"
)

type HandlerOptions struct {
	Config     *Config
	Calculator *nutrition.Calculator
	Profiles   ProfileStore
	Schema     *validation.SchemaValidator
	Logger     logger.Logger
}

type Handler struct {
	config       *Config
	calc         *nutrition.Calculator
	profiles     ProfileStore
	schema       *validation.SchemaValidator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       opts.Config,
		calc:         opts.Calculator,
		profiles:     opts.Profiles,
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
	profile, source, err := h.resolveProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	cfg := h.calc.Config()
	if res := validation.ValidateProfile(profile, cfg); !res.Valid {
		return nil, errors.NewInvalidProfileError(res.Summary())
	}
	if res := validation.ValidateGoal(input.Goal, cfg); !res.Valid {
		return nil, errors.NewInvalidGoalError(res.Summary())
	}

	result := h.calc.Calculate(profile, input.Goal).Rounded()

	metrics.RecordCalculation(TaskType)
	if result.WasClamped {
		metrics.RecordClamp(string(input.Goal.Type))
		h.logger.Info("calorie target clamped", map[string]interface{}{
			"goalType":             input.Goal.Type,
			"requestedWeeklyKg":    input.Goal.WeeklyChangeKg,
			"actualWeeklyChangeKg": result.ActualWeeklyChangeKg,
			"targetCalories":       result.TargetCalories,
		})
	}
	if result.GoalConflict {
		h.logger.Warn("goal direction conflicts with goal weight", map[string]interface{}{
			"goalType": input.Goal.Type,
			"message":  result.ConflictMessage,
		})
	}

	return &Output{
		CalorieResult:  result,
		TargetCalories: result.TargetCalories,
		ProfileSource:  source,
	}, nil
}

func (h *Handler) resolveProfile(ctx context.Context, input *Input) (nutrition.PersonProfile, string, error) {
	if input.Profile != nil {
		profile := *input.Profile
		if profile.ActivityFactor == 0 && input.ActivityLevel != "" {
			factor, ok := h.calc.ActivityFactor(input.ActivityLevel)
			if !ok {
				return profile, "", errors.NewInvalidProfileError("unknown activity level " + input.ActivityLevel)
			}
			profile.ActivityFactor = factor
		}
		return profile, ProfileSourceInline, nil
	}

	if input.UserID == "" || h.profiles == nil {
		return nutrition.PersonProfile{}, "", errors.NewInvalidProfileError("either profile or userId is required")
	}

	user, err := h.profiles.GetByID(ctx, input.UserID)
	if err != nil {
		return nutrition.PersonProfile{}, "", err
	}
	profile, err := ProfileFromUser(user, h.calc)
	return profile, ProfileSourceStored, err
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
