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

// FoodData Central nutrient ids.
const (
	usdaEnergyKcal = 1008
	usdaProtein    = 1003
	usdaCarbs      = 1005
	usdaFat        = 1004
	usdaSugars     = 2000
	usdaFiber      = 1079
	usdaSodium     = 1093
)

var usdaMicronutrients = map[int]string{
	1087: "calcium_mg",
	1089: "iron_mg",
	1092: "potassium_mg",
	1106: "vitamin_a_ug",
	1162: "vitamin_c_mg",
	1114: "vitamin_d_ug",
}

type usdaFood struct {
	FdcID         int    `json:"fdcId"`
	Description   string `json:"description"`
	FoodNutrients []struct {
		Nutrient struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
}

// USDAClient reads foods from FoodData Central by fdcId. Foundation and SR
// Legacy foods are reported per 100 g.
type USDAClient struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func NewUSDAClient(cfg config.ProviderConfig) *USDAClient {
	return &USDAClient{
		http:    newHTTPClient(cfg),
		baseURL: trimBase(cfg.BaseURL),
		apiKey:  cfg.APIKey,
	}
}

func (c *USDAClient) Name() string { return ProviderUSDA }

func (c *USDAClient) Lookup(ctx context.Context, fdcID string) (*nutrition.NutritionItem, error) {
	if _, err := strconv.Atoi(fdcID); err != nil {
		return nil, errors.NewInvalidNutritionInputError(fmt.Sprintf("fdcId must be numeric: %q", fdcID))
	}

	var food usdaFood
	endpoint := fmt.Sprintf("%s/v1/food/%s", c.baseURL, url.PathEscape(fdcID))
	if err := c.http.GetJSON(ctx, endpoint, url.Values{"api_key": {c.apiKey}}, nil, &food); err != nil {
		return nil, err
	}
	return food.toItem(), nil
}

func (f usdaFood) toItem() *nutrition.NutritionItem {
	item := &nutrition.NutritionItem{
		ID:           strconv.Itoa(f.FdcID),
		Name:         f.Description,
		ServingGrams: 100,
	}
	for _, n := range f.FoodNutrients {
		switch n.Nutrient.ID {
		case usdaEnergyKcal:
			item.Calories = n.Amount
		case usdaProtein:
			item.Protein = n.Amount
		case usdaCarbs:
			item.Carbs = n.Amount
		case usdaFat:
			item.Fat = n.Amount
		case usdaSugars:
			item.Sugar = n.Amount
		case usdaFiber:
			item.Fiber = n.Amount
		case usdaSodium:
			item.Sodium = n.Amount
		default:
			if key, ok := usdaMicronutrients[n.Nutrient.ID]; ok {
				setMicro(item, key, n.Amount)
			}
		}
	}
	return item
}

func setMicro(item *nutrition.NutritionItem, key string, v float64) {
	if item.Micronutrients == nil {
		item.Micronutrients = make(map[string]float64)
	}
	item.Micronutrients[key] = v
}
