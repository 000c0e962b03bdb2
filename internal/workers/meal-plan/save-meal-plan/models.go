package savemealplan

import (
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
)

// Input accepts the items output of generate-meal-plan or a hand-built list.
type Input struct {
	UserID         string                      `json:"userId"`
	Name           string                      `json:"name"`
	TargetCalories float64                     `json:"targetCalories"`
	Items          []models.MealPlanItem       `json:"items"`
	Nutrition      *nutrition.NutritionSummary `json:"nutrition,omitempty"`
}

type Output struct {
	MealPlanID string `json:"mealPlanId"`
	ItemCount  int    `json:"itemCount"`
	CreatedAt  string `json:"createdAt"`
}
