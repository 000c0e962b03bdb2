package camunda

import (
	"context"
	"time"

	"bulkbuddy-workers/internal/common/config"
	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// JobHandler reports the job outcome to the broker itself and returns the
// error it reported, if any, so the worker can record it.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type HandlerFunc func(client worker.JobClient, job entities.Job) error

func (f HandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// StartWorker opens a job worker for taskType and instruments every job with
// a span, the active-jobs gauge and the completed/failed counters.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs, log)).
		MaxJobsActive(wcfg.MaxJobsActive)
	if wcfg.Timeout > 0 {
		builder = builder.Timeout(config.GetDuration(wcfg.Timeout))
	}
	jobWorker := builder.Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Instrument adapts a JobHandler to the Zeebe handler signature.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability, log logger.Logger) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		started := time.Now()
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		ctx, span := obs.StartSpan(context.Background(), "job "+taskType,
			attribute.String("task_type", taskType),
			attribute.Int64("job_key", job.Key),
			attribute.Int64("process_instance_key", job.ProcessInstanceKey),
		)
		defer span.End()

		err := handler.Handle(client, job)

		status := "completed"
		errorCode := ""
		if err != nil {
			status = "failed"
			errorCode = string(errors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, errorCode)
			log.Debug("job returned error", map[string]interface{}{
				"jobKey":    job.Key,
				"errorCode": errorCode,
			})
		}

		metrics.ObserveJob(taskType, started, errorCode)
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, time.Since(started), status)
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
