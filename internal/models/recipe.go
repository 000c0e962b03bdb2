package models

import "bulkbuddy-workers/internal/nutrition"

// Recipe holds per-100 g nutrition plus the default serving size.
type Recipe struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Source         string             `json:"source,omitempty"`
	ServingGrams   float64            `json:"servingGrams"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Fat            float64            `json:"fat"`
	Carbs          float64            `json:"carbs"`
	Sugar          float64            `json:"sugar"`
	Fiber          float64            `json:"fiber"`
	Sodium         float64            `json:"sodium"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

// CaloriesPerServing is the calorie count of one default serving.
func (r Recipe) CaloriesPerServing() float64 {
	return r.Calories * r.ServingGrams / 100
}

// NutritionItem converts the stored row into aggregator input.
func (r Recipe) NutritionItem() nutrition.NutritionItem {
	return nutrition.NutritionItem{
		ID:             r.ID,
		Name:           r.Title,
		Calories:       r.Calories,
		Protein:        r.Protein,
		Fat:            r.Fat,
		Carbs:          r.Carbs,
		Sugar:          r.Sugar,
		Fiber:          r.Fiber,
		Sodium:         r.Sodium,
		Micronutrients: r.Micronutrients,
		ServingGrams:   r.ServingGrams,
	}
}

// NutritionItem converts a search hit. Index values are per serving, so they
// are rescaled to per 100 g. A hit without a serving size is treated as one
// 100 g serving.
func (d RecipeDocument) NutritionItem() nutrition.NutritionItem {
	serving := d.ServingGrams
	if serving <= 0 {
		serving = 100
	}
	scale := 100 / serving
	return nutrition.NutritionItem{
		ID:           d.ID,
		Name:         d.Title,
		Calories:     d.CaloriesPerServing * scale,
		Protein:      d.Protein * scale,
		Fat:          d.Fat * scale,
		Carbs:        d.Carbs * scale,
		Sugar:        d.Sugar * scale,
		Fiber:        d.Fiber * scale,
		Sodium:       d.Sodium * scale,
		ServingGrams: serving,
	}
}

// RecipeDocument is the shape indexed in Elasticsearch. Nutrient values are
// per serving.
type RecipeDocument struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Diet               []string `json:"diet,omitempty"`
	MealTypes          []string `json:"meal_types,omitempty"`
	CaloriesPerServing float64  `json:"calories_per_serving"`
	ServingGrams       float64  `json:"serving_grams"`
	Protein            float64  `json:"protein"`
	Fat                float64  `json:"fat"`
	Carbs              float64  `json:"carbs"`
	Sugar              float64  `json:"sugar"`
	Fiber              float64  `json:"fiber"`
	Sodium             float64  `json:"sodium"`
}
