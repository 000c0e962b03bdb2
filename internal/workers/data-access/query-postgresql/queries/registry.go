package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/repository"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

type Params struct {
	UserID    string
	PlanID    string
	RecipeIDs []string
}

// QueryFunc returns the result rows and how many there are.
type QueryFunc func(ctx context.Context, store *repository.Store, params Params) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeUserProfile:     UserProfile,
	models.QueryTypeRecipeNutrition: RecipeNutrition,
	models.QueryTypeUserMealPlans:   UserMealPlans,
	models.QueryTypeMealPlanItems:   MealPlanItems,
}

// Execute returns: data, rowCount, executionTime (ms), error
func Execute(ctx context.Context, store *repository.Store, queryType models.QueryType, params Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	start := time.Now()
	data, rows, err := fn(ctx, store, params)
	return data, rows, time.Since(start).Milliseconds(), err
}
