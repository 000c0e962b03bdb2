package queries

import (
	"context"
	"fmt"

	"bulkbuddy-workers/internal/repository"
)

func UserMealPlans(ctx context.Context, store *repository.Store, params Params) (interface{}, int, error) {
	if params.UserID == "" {
		return nil, 0, fmt.Errorf("%w: userId", ErrMissingParam)
	}
	plans, err := store.MealPlans.ListByUser(ctx, params.UserID)
	if err != nil {
		return nil, 0, err
	}
	return plans, len(plans), nil
}

func MealPlanItems(ctx context.Context, store *repository.Store, params Params) (interface{}, int, error) {
	if params.PlanID == "" {
		return nil, 0, fmt.Errorf("%w: planId", ErrMissingParam)
	}
	items, err := store.MealPlans.Items(ctx, params.PlanID)
	if err != nil {
		return nil, 0, err
	}
	return items, len(items), nil
}
