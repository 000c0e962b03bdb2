package queryelasticsearch

import "bulkbuddy-workers/internal/models"

type Input struct {
	IndexName  string     `json:"indexName,omitempty"`
	QueryType  string     `json:"queryType"`
	Filters    Filters    `json:"filters"`
	Pagination Pagination `json:"pagination"`
}

// Filters narrows a recipe search. Calorie bounds are per serving.
type Filters struct {
	Text           string   `json:"text,omitempty"`
	RecipeID       string   `json:"recipeId,omitempty"`
	MealType       string   `json:"mealType,omitempty"`
	Diet           []string `json:"diet,omitempty"`
	MinCalories    float64  `json:"minCalories,omitempty"`
	MaxCalories    float64  `json:"maxCalories,omitempty"`
	TargetCalories float64  `json:"targetCalories,omitempty"`
	ExcludeIDs     []string `json:"excludeIds,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Recipes   []models.RecipeDocument `json:"recipes"`
	TotalHits int64                   `json:"totalHits"`
	MaxScore  float64                 `json:"maxScore"`
	Took      int64                   `json:"took"` // milliseconds
}
