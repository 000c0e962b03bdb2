package aggregatenutrition

import "bulkbuddy-workers/internal/nutrition"

// RecipeRef points at a stored recipe. A zero ServingGrams uses the recipe's
// default serving.
type RecipeRef struct {
	RecipeID     string  `json:"recipeId"`
	ServingGrams float64 `json:"servingGrams,omitempty"`
}

// Input mixes inline per-100 g items (with positional servings) and stored
// recipes. Inline items come first in the combined list.
type Input struct {
	Items    []nutrition.NutritionItem `json:"items,omitempty"`
	Servings []float64                 `json:"servings,omitempty"`
	Recipes  []RecipeRef               `json:"recipes,omitempty"`
}

type Output struct {
	Nutrition nutrition.NutritionSummary `json:"nutrition"`
}
