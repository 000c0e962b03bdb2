package generatemealplan

import (
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
)

// Input takes the daily calorie target, usually the targetCalories output of
// calculate-calorie-targets.
type Input struct {
	UserID           string   `json:"userId,omitempty"`
	TargetCalories   float64  `json:"targetCalories"`
	Diet             []string `json:"diet,omitempty"`
	ExcludeRecipeIDs []string `json:"excludeRecipeIds,omitempty"`
}

type PlannedMeal struct {
	Slot     string                `json:"slot"`
	Band     nutrition.MealSlot    `json:"band"`
	Recipe   models.RecipeDocument `json:"recipe"`
	Calories float64               `json:"calories"`
}

type Output struct {
	MealSlots nutrition.MealSlotTargets  `json:"mealSlots"`
	Meals     []PlannedMeal              `json:"meals"`
	Items     []models.MealPlanItem      `json:"items"`
	Nutrition nutrition.NutritionSummary `json:"nutrition"`
}
