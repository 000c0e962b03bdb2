package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	calculatecalorietargets "bulkbuddy-workers/internal/workers/calculator/calculate-calorie-targets"
	partitionmealslots "bulkbuddy-workers/internal/workers/calculator/partition-meal-slots"
	aggregatenutrition "bulkbuddy-workers/internal/workers/nutrition/aggregate-nutrition"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   errors.ErrorCode `json:"error"`
	Message string           `json:"message"`
	Details string           `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps a job error onto an HTTP status.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeParseError, errors.ErrCodeInputSchemaViolation,
		errors.ErrCodeInvalidProfile, errors.ErrCodeInvalidGoal, errors.ErrCodeInvalidNutritionInput:
		return http.StatusBadRequest
	case errors.ErrCodeProfileNotFound, errors.ErrCodeRecipeNotFound:
		return http.StatusNotFound
	}
	if errors.IsRetryableErrorCode(code) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := errors.AsStandardError(err)
	if !ok {
		stdErr = errors.New(errors.ErrCodeInternal, "Internal error", err.Error(), false)
	}
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"errorCode": stdErr.Code,
			"error":     err,
		})
	}
	writeJSON(w, status, errorResponse{Error: stdErr.Code, Message: stdErr.Message, Details: stdErr.Details})
}

func decode(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dest); err != nil {
		return errors.NewParseError(err)
	}
	return nil
}

func (s *Server) handleCalories(w http.ResponseWriter, r *http.Request) {
	var input calculatecalorietargets.Input
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.opts.Calories.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMealSlots(w http.ResponseWriter, r *http.Request) {
	var input partitionmealslots.Input
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.opts.MealSlots.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var input aggregatenutrition.Input
	if err := decode(w, r, &input); err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.opts.Aggregate.Execute(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readiness struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.opts.Checks))
	for name := range s.opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readiness{Status: "ready", Components: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := s.opts.Checks[name](ctx); err != nil {
			resp.Components[name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			s.logger.Warn("readiness check failed", map[string]interface{}{
				"component": name,
				"error":     err,
			})
			continue
		}
		resp.Components[name] = "ok"
	}
	writeJSON(w, status, resp)
}
