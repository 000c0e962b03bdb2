package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.messages = append(l.messages, msg)
}

func createJob(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                1,
		Type:               "calculate-calorie-targets",
		ProcessInstanceKey: 10,
		Retries:            retries,
		Variables:          "{}",
	}}
}

// ==========================
// Constructors & Conversion
// ==========================

func TestConstructors_Retryability(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"invalid profile", NewInvalidProfileError("age must be between 1 and 120"), ErrCodeInvalidProfile, false},
		{"invalid goal", NewInvalidGoalError("weeklyChangeKg 0.3 not allowed"), ErrCodeInvalidGoal, false},
		{"schema violation", NewInputSchemaViolationError("profile is required"), ErrCodeInputSchemaViolation, false},
		{"profile not found", NewProfileNotFoundError("u-1"), ErrCodeProfileNotFound, false},
		{"provider failed", NewNutritionProviderFailedError("usda", fmt.Errorf("502")), ErrCodeNutritionProviderFailed, true},
		{"provider timeout", NewNutritionProviderTimeoutError("edamam"), ErrCodeNutritionProviderTimeout, true},
		{"no candidates", NewNoMealCandidatesError("lunch", 630, 770), ErrCodeNoMealCandidates, false},
		{"duplicate plan", NewDuplicateMealPlanError("cut week 1"), ErrCodeDuplicateMealPlan, false},
		{"insert failed", NewDatabaseInsertFailedError(fmt.Errorf("conn reset")), ErrCodeDatabaseInsertFailed, true},
		{"notification", NewNotificationSendFailedError("email", fmt.Errorf("throttled")), ErrCodeNotificationSendFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryableErrorCode(tt.code))
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInputSchemaViolationError("missing goal"))

	assert.Equal(t, "INVALID_INPUT", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "INVALID_INPUT", vars["errorCode"])
	assert.Equal(t, "INPUT_SCHEMA_VIOLATION", vars["originalErrorCode"])
	assert.Equal(t, "missing goal", vars["errorDetails"])

	retryable := ConvertToBPMNError(NewSearchTimeoutError("recipes-by-calorie-band"))
	assert.Equal(t, 2, retryable.Retries)

	unmapped := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE"})
	assert.Equal(t, "SOMETHING_ELSE", unmapped.Code)
}

func TestAsStandardError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("load profile: %w", NewProfileNotFoundError("u-9"))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeProfileNotFound, stdErr.Code)
	assert.Equal(t, ErrCodeProfileNotFound, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("boom")))
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeNutritionProviderTimeout: "NUTRITION_PROVIDER",
		ErrCodeNoMealCandidates:         "MEAL_PLAN",
		ErrCodeDuplicateMealPlan:        "MEAL_PLAN",
		ErrCodeQueryTimeout:             "DATABASE",
		ErrCodeIndexNotFound:            "SEARCH",
		ErrCodeNotificationSendFailed:   "NOTIFICATION",
		ErrCodeRecipeNotFound:           "NOT_FOUND",
		ErrCodeInvalidProfile:           "VALIDATION",
		ErrCodeParseError:               "VALIDATION",
		ErrCodeInternal:                 "OTHER",
	}
	for code, category := range tests {
		assert.Equal(t, category, GetErrorCategory(code), string(code))
	}
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewRecipeNotFoundError("r-1").WithMetadata("index", "recipes")
	assert.Equal(t, "recipes", err.Metadata["index"])
}

// ==========================
// Handler Resolution
// ==========================

func TestErrorHandler_Resolve(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	tests := []struct {
		name         string
		err          error
		jobRetries   int32
		expectRetry  bool
		expectRemain int32
		expectCode   string
	}{
		{"retryable with retries left", NewQueryExecutionFailedError("user-profile", fmt.Errorf("io")), 3, true, 2, "QUERY_EXECUTION_FAILED"},
		{"retryable capped by code", NewSearchTimeoutError("recipe-search"), 5, true, 2, "SEARCH_TIMEOUT"},
		{"retryable on last attempt", NewNutritionProviderFailedError("usda", fmt.Errorf("500")), 1, false, 0, "NUTRITION_PROVIDER_FAILED"},
		{"business error", NewInvalidGoalError("bad"), 3, false, 0, "INVALID_GOAL"},
		{"plain error", fmt.Errorf("boom"), 3, false, 0, "INTERNAL_ERROR"},
		{"deadline", context.DeadlineExceeded, 3, true, 2, "QUERY_TIMEOUT"},
		{"wrapped deadline", fmt.Errorf("load recipes: %w", context.DeadlineExceeded), 3, true, 2, "QUERY_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.Resolve(createJob(tt.jobRetries), tt.err)
			assert.Equal(t, tt.expectRetry, res.Retry)
			assert.Equal(t, tt.expectRemain, res.Retries)
			assert.Equal(t, tt.expectCode, res.BPMN.Code)
		})
	}
}
