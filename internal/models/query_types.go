// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeUserProfile     QueryType = "user_profile"
	QueryTypeRecipeNutrition QueryType = "recipe_nutrition"
	QueryTypeUserMealPlans   QueryType = "user_meal_plans"
	QueryTypeMealPlanItems   QueryType = "meal_plan_items"
)

// SearchType names an Elasticsearch recipe query.
type SearchType string

const (
	SearchTypeRecipesByCalorieBand SearchType = "recipes_by_calorie_band"
	SearchTypeRecipeSearch         SearchType = "recipe_search"
	SearchTypeRecipeDetails        SearchType = "recipe_details"
)
