// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports job failures back to the broker: retryable codes fail
// the job with retries left, everything else is thrown as a BPMN error.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolution is the decision taken for a failed job.
type Resolution struct {
	Standard *StandardError
	BPMN     *BPMNError
	Retry    bool
	Retries  int32
}

// Resolve normalizes err and decides between a retry and a BPMN throw.
func (h *ErrorHandler) Resolve(job entities.Job, err error) Resolution {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	res := Resolution{Standard: stdErr, BPMN: bpmnErr}
	if bpmnErr.Retries > 0 && job.Retries > 1 {
		res.Retry = true
		// job.Retries counts the attempt that just failed
		res.Retries = job.Retries - 1
		if res.Retries > int32(bpmnErr.Retries) {
			res.Retries = int32(bpmnErr.Retries)
		}
	}
	return res
}

// HandleJobError handles any error in a worker job
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Resolution {
	res := h.Resolve(job, err)
	h.logError(job, res)

	if res.Retry {
		h.failJobWithRetries(ctx, client, job, res.BPMN, res.Retries)
	} else {
		h.throwBPMNError(ctx, client, job, res.BPMN)
	}
	return res
}

func normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return newError(ErrCodeQueryTimeout, "Job exceeded its deadline", err.Error(), true)
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int32) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			h.send(ctx, job, func(ctx context.Context) error {
				_, err := cmdWithVars.Send(ctx)
				return err
			})
			return
		}
	}

	h.send(ctx, job, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, err := json.Marshal(bpmnErr.ToErrorVariables()); err == nil {
		if cmdWithVars, err := cmd.VariablesFromString(string(varsJSON)); err == nil {
			h.send(ctx, job, func(ctx context.Context) error {
				_, err := cmdWithVars.Send(ctx)
				return err
			})
			return
		}
	}

	h.send(ctx, job, func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

func (h *ErrorHandler) send(ctx context.Context, job entities.Job, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, res Resolution) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(res.Standard.Code),
		"bpmnErrorCode":    res.BPMN.Code,
		"message":          res.BPMN.Message,
		"details":          res.Standard.Details,
		"retry":            res.Retry,
		"retries":          res.Retries,
		"errorCategory":    GetErrorCategory(res.Standard.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
