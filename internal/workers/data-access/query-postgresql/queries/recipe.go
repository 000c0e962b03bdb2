package queries

import (
	"context"
	"fmt"

	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/repository"
)

// RecipeNutrition returns the stored per-100 g rows in the requested order.
func RecipeNutrition(ctx context.Context, store *repository.Store, params Params) (interface{}, int, error) {
	if len(params.RecipeIDs) == 0 {
		return nil, 0, fmt.Errorf("%w: recipeIds", ErrMissingParam)
	}
	byID, err := store.Recipes.GetByIDs(ctx, params.RecipeIDs)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool, len(byID))
	recipes := make([]models.Recipe, 0, len(byID))
	for _, id := range params.RecipeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		recipes = append(recipes, byID[id])
	}
	return recipes, len(recipes), nil
}
