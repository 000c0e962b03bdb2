package nutritionapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"bulkbuddy-workers/internal/common/config"
	"bulkbuddy-workers/internal/common/errors"
	httpclient "bulkbuddy-workers/internal/common/http"
	"bulkbuddy-workers/internal/nutrition"
)

type spoonacularIngredient struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Nutrition struct {
		Nutrients []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
			Unit   string  `json:"unit"`
		} `json:"nutrients"`
	} `json:"nutrition"`
}

var spoonacularMicronutrients = map[string]string{
	"Calcium":   "calcium_mg",
	"Iron":      "iron_mg",
	"Potassium": "potassium_mg",
	"Vitamin A": "vitamin_a_iu",
	"Vitamin C": "vitamin_c_mg",
	"Vitamin D": "vitamin_d_ug",
}

// SpoonacularClient reads ingredient information for a fixed 100 g amount.
type SpoonacularClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func NewSpoonacularClient(cfg config.ProviderConfig) *SpoonacularClient {
	return &SpoonacularClient{
		http:    newHTTPClient(cfg),
		baseURL: trimBase(cfg.BaseURL),
		apiKey:  cfg.APIKey,
	}
}

func (c *SpoonacularClient) Name() string { return ProviderSpoonacular }

func (c *SpoonacularClient) Lookup(ctx context.Context, ingredientID string) (*nutrition.NutritionItem, error) {
	if _, err := strconv.Atoi(ingredientID); err != nil {
		return nil, errors.NewInvalidNutritionInputError(fmt.Sprintf("ingredient id must be numeric: %q", ingredientID))
	}

	query := url.Values{
		"amount": {"100"},
		"unit":   {"grams"},
		"apiKey": {c.apiKey},
	}
	endpoint := fmt.Sprintf("%s/food/ingredients/%s/information", c.baseURL, url.PathEscape(ingredientID))

	var ing spoonacularIngredient
	if err := c.http.GetJSON(ctx, endpoint, query, nil, &ing); err != nil {
		return nil, err
	}
	return ing.toItem(), nil
}

func (s spoonacularIngredient) toItem() *nutrition.NutritionItem {
	item := &nutrition.NutritionItem{
		ID:           strconv.Itoa(s.ID),
		Name:         s.Name,
		ServingGrams: 100,
	}
	for _, n := range s.Nutrition.Nutrients {
		switch n.Name {
		case "Calories":
			item.Calories = n.Amount
		case "Protein":
			item.Protein = n.Amount
		case "Fat":
			item.Fat = n.Amount
		case "Carbohydrates":
			item.Carbs = n.Amount
		case "Sugar":
			item.Sugar = n.Amount
		case "Fiber":
			item.Fiber = n.Amount
		case "Sodium":
			item.Sodium = n.Amount
		default:
			if key, ok := spoonacularMicronutrients[n.Name]; ok {
				setMicro(item, key, n.Amount)
			}
		}
	}
	return item
}
