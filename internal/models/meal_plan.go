package models

import "time"

type MealPlan struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Name           string         `json:"name"`
	TargetCalories float64        `json:"targetCalories"`
	Items          []MealPlanItem `json:"items"`
	CreatedAt      time.Time      `json:"createdAt"`
}

type MealPlanItem struct {
	Slot         string  `json:"slot"`
	RecipeID     string  `json:"recipeId"`
	ServingGrams float64 `json:"servingGrams"`
}
