package nutritionapi

import (
	"context"
	"fmt"
	"net/url"

	"bulkbuddy-workers/internal/common/config"
	httpclient "bulkbuddy-workers/internal/common/http"
	"bulkbuddy-workers/internal/nutrition"
)

type edamamFood struct {
	FoodID    string             `json:"foodId"`
	Label     string             `json:"label"`
	Nutrients map[string]float64 `json:"nutrients"`
}

type edamamParserResponse struct {
	Parsed []struct {
		Food edamamFood `json:"food"`
	} `json:"parsed"`
	Hints []struct {
		Food edamamFood `json:"food"`
	} `json:"hints"`
}

var edamamMicronutrients = map[string]string{
	"CA":       "calcium_mg",
	"FE":       "iron_mg",
	"K":        "potassium_mg",
	"VITA_RAE": "vitamin_a_ug",
	"VITC":     "vitamin_c_mg",
	"VITD":     "vitamin_d_ug",
}

// EdamamClient resolves free-text ingredients with the food database parser.
// Parser nutrients are per 100 g.
type EdamamClient struct {
	http    *httpclient.Client
	baseURL string
	appID   string
	appKey  string
}

func NewEdamamClient(cfg config.ProviderConfig) *EdamamClient {
	return &EdamamClient{
		http:    newHTTPClient(cfg),
		baseURL: trimBase(cfg.BaseURL),
		appID:   cfg.AppID,
		appKey:  cfg.APIKey,
	}
}

func (c *EdamamClient) Name() string { return ProviderEdamam }

func (c *EdamamClient) Lookup(ctx context.Context, ingredient string) (*nutrition.NutritionItem, error) {
	query := url.Values{
		"app_id":  {c.appID},
		"app_key": {c.appKey},
		"ingr":    {ingredient},
	}

	var resp edamamParserResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/api/food-database/v2/parser", query, nil, &resp); err != nil {
		return nil, err
	}

	switch {
	case len(resp.Parsed) > 0:
		return resp.Parsed[0].Food.toItem(), nil
	case len(resp.Hints) > 0:
		return resp.Hints[0].Food.toItem(), nil
	}
	return nil, &httpclient.StatusError{StatusCode: 404, Body: fmt.Sprintf("no match for %q", ingredient)}
}

func (f edamamFood) toItem() *nutrition.NutritionItem {
	item := &nutrition.NutritionItem{
		ID:           f.FoodID,
		Name:         f.Label,
		Calories:     f.Nutrients["ENERC_KCAL"],
		Protein:      f.Nutrients["PROCNT"],
		Fat:          f.Nutrients["FAT"],
		Carbs:        f.Nutrients["CHOCDF"],
		Sugar:        f.Nutrients["SUGAR"],
		Fiber:        f.Nutrients["FIBTG"],
		Sodium:       f.Nutrients["NA"],
		ServingGrams: 100,
	}
	for code, key := range edamamMicronutrients {
		if v, ok := f.Nutrients[code]; ok {
			setMicro(item, key, v)
		}
	}
	return item
}
