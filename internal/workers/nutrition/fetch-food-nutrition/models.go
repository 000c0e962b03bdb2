package fetchfoodnutrition

import "bulkbuddy-workers/internal/nutrition"

// Input names the provider and its lookup key: an FDC id for usda, free
// text for edamam, an ingredient id for spoonacular. An empty provider
// selects the first enabled one.
type Input struct {
	Provider string `json:"provider,omitempty"`
	Query    string `json:"query"`
}

type Output struct {
	Food     nutrition.NutritionItem `json:"food"`
	Provider string                  `json:"provider"`
	Cached   bool                    `json:"cached"`
}
