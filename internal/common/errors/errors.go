// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError            ErrorCode = "PARSE_ERROR"
	ErrCodeInputSchemaViolation  ErrorCode = "INPUT_SCHEMA_VIOLATION"
	ErrCodeInvalidProfile        ErrorCode = "INVALID_PROFILE"
	ErrCodeInvalidGoal           ErrorCode = "INVALID_GOAL"
	ErrCodeInvalidNutritionInput ErrorCode = "INVALID_NUTRITION_INPUT"

	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeRecipeNotFound  ErrorCode = "RECIPE_NOT_FOUND"

	ErrCodeNutritionProviderFailed  ErrorCode = "NUTRITION_PROVIDER_FAILED"
	ErrCodeNutritionProviderTimeout ErrorCode = "NUTRITION_PROVIDER_TIMEOUT"
	ErrCodeNoProviderConfigured     ErrorCode = "NO_PROVIDER_CONFIGURED"
	ErrCodeFoodNotFound             ErrorCode = "FOOD_NOT_FOUND"

	ErrCodeNoMealCandidates  ErrorCode = "NO_MEAL_CANDIDATES"
	ErrCodeDuplicateMealPlan ErrorCode = "DUPLICATE_MEAL_PLAN"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowEngineTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowCommandRejected   ErrorCode = "WORKFLOW_COMMAND_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// New builds a StandardError for codes without a dedicated constructor.
func New(code ErrorCode, message, details string, retryable bool) *StandardError {
	return newError(code, message, details, retryable)
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", err.Error(), false)
}

// NewInputSchemaViolationError reports job variables that do not satisfy the
// activity's registered input schema.
func NewInputSchemaViolationError(details string) *StandardError {
	return newError(ErrCodeInputSchemaViolation, "Input does not match activity schema", details, false)
}

func NewInvalidProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidProfile, "Person profile failed plausibility checks", details, false)
}

func NewInvalidGoalError(details string) *StandardError {
	return newError(ErrCodeInvalidGoal, "Goal specification is invalid", details, false)
}

func NewInvalidNutritionInputError(details string) *StandardError {
	return newError(ErrCodeInvalidNutritionInput, "Nutrition input is invalid", details, false)
}

func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "User profile not found", fmt.Sprintf("userId: %s", userID), false)
}

func NewRecipeNotFoundError(recipeID string) *StandardError {
	return newError(ErrCodeRecipeNotFound, "Recipe not found", fmt.Sprintf("recipeId: %s", recipeID), false)
}

// NewNutritionProviderFailedError creates a retryable third-party API error.
func NewNutritionProviderFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeNutritionProviderFailed,
		fmt.Sprintf("Nutrition provider '%s' error", provider), err.Error(), true)
}

func NewNutritionProviderTimeoutError(provider string) *StandardError {
	return newError(ErrCodeNutritionProviderTimeout,
		fmt.Sprintf("Nutrition provider '%s' timeout", provider), "request exceeded timeout", true)
}

func NewNoProviderConfiguredError(provider string) *StandardError {
	return newError(ErrCodeNoProviderConfigured, "Nutrition provider is not configured",
		fmt.Sprintf("provider: %s", provider), false)
}

func NewFoodNotFoundError(provider, query string) *StandardError {
	return newError(ErrCodeFoodNotFound, "Food not found at nutrition provider",
		fmt.Sprintf("provider: %s, query: %s", provider, query), false)
}

// NewNoMealCandidatesError reports a meal slot that no recipe fits.
func NewNoMealCandidatesError(slot string, min, max float64) *StandardError {
	return newError(ErrCodeNoMealCandidates, "No recipes fit the meal slot",
		fmt.Sprintf("slot: %s, range: %.0f-%.0f kcal", slot, min, max), false)
}

func NewDuplicateMealPlanError(name string) *StandardError {
	return newError(ErrCodeDuplicateMealPlan, "Meal plan already exists", fmt.Sprintf("name: %s", name), false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewInvalidQueryTypeError(queryType string) *StandardError {
	return newError(ErrCodeInvalidQueryType, "Unsupported query type", fmt.Sprintf("queryType: %s", queryType), false)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("indexName: %s", indexName), false)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

// NewWorkflowEngineError wraps a failed Zeebe gateway command.
func NewWorkflowEngineError(code ErrorCode, operation string, err error) *StandardError {
	retryable := code != ErrCodeWorkflowCommandRejected
	return newError(code, fmt.Sprintf("Zeebe operation '%s' failed", operation), err.Error(), retryable)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught by
// boundary events. Codes missing from the table are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                    "INVALID_INPUT",
	ErrCodeInputSchemaViolation:          "INVALID_INPUT",
	ErrCodeInvalidProfile:                "INVALID_PROFILE",
	ErrCodeInvalidGoal:                   "INVALID_GOAL",
	ErrCodeInvalidNutritionInput:         "INVALID_NUTRITION_INPUT",
	ErrCodeProfileNotFound:               "PROFILE_NOT_FOUND",
	ErrCodeRecipeNotFound:                "RECIPE_NOT_FOUND",
	ErrCodeNutritionProviderFailed:       "NUTRITION_PROVIDER_FAILED",
	ErrCodeNutritionProviderTimeout:      "NUTRITION_PROVIDER_TIMEOUT",
	ErrCodeNoProviderConfigured:          "NUTRITION_PROVIDER_FAILED",
	ErrCodeFoodNotFound:                  "FOOD_NOT_FOUND",
	ErrCodeNoMealCandidates:              "NO_MEAL_CANDIDATES",
	ErrCodeDuplicateMealPlan:             "DUPLICATE_MEAL_PLAN",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:              "INVALID_QUERY_TYPE",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNutritionProviderFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeNutritionProviderTimeout,
		ErrCodeWorkflowEngineTimeout:
		return 2

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError when one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER"):
		return "NUTRITION_PROVIDER"
	case strings.Contains(codeStr, "MEAL"):
		return "MEAL_PLAN"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "WORKFLOW"):
		return "WORKFLOW_ENGINE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
