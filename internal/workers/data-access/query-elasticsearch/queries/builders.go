package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"bulkbuddy-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingParam     = errors.New("missing required parameter")
)

const (
	defaultSize = 20
	maxSize     = 100
)

// RecipeQuery describes one search against the recipes index. Calorie bounds
// apply to calories_per_serving; zero means unbounded.
type RecipeQuery struct {
	Index       string
	SearchType  models.SearchType
	Text        string
	RecipeID    string
	MealType    string
	Diet        []string
	MinCalories float64
	MaxCalories float64
	// TargetCalories ranks band matches by distance from the slot target.
	TargetCalories float64
	ExcludeIDs     []string
	From           int
	Size           int
}

func (q *RecipeQuery) normalize() {
	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	if q.From < 0 {
		q.From = 0
	}
}

func BuildQuery(q RecipeQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	q.normalize()

	var body map[string]interface{}
	switch q.SearchType {
	case models.SearchTypeRecipesByCalorieBand:
		if q.MaxCalories <= 0 {
			return nil, fmt.Errorf("%w: maxCalories", ErrMissingParam)
		}
		body = buildCalorieBandQuery(q)
	case models.SearchTypeRecipeSearch:
		body = buildRecipeSearchQuery(q)
	case models.SearchTypeRecipeDetails:
		if q.RecipeID == "" {
			return nil, fmt.Errorf("%w: recipeId", ErrMissingParam)
		}
		body = map[string]interface{}{
			"query": map[string]interface{}{
				"ids": map[string]interface{}{"values": []string{q.RecipeID}},
			},
		}
		q.From, q.Size = 0, 1
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, q.SearchType)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	from, size := q.From, q.Size
	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(payload),
		From:  &from,
		Size:  &size,
	}, nil
}

func commonFilters(q RecipeQuery) []interface{} {
	filters := []interface{}{}
	if q.MealType != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"meal_types": q.MealType},
		})
	}
	// every requested diet label must be present
	for _, d := range q.Diet {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"diet": d},
		})
	}
	if r := calorieRange(q); r != nil {
		filters = append(filters, r)
	}
	return filters
}

func calorieRange(q RecipeQuery) map[string]interface{} {
	bounds := map[string]interface{}{}
	if q.MinCalories > 0 {
		bounds["gte"] = q.MinCalories
	}
	if q.MaxCalories > 0 {
		bounds["lte"] = q.MaxCalories
	}
	if len(bounds) == 0 {
		return nil
	}
	return map[string]interface{}{
		"range": map[string]interface{}{"calories_per_serving": bounds},
	}
}

func exclusions(q RecipeQuery) []interface{} {
	if len(q.ExcludeIDs) == 0 {
		return nil
	}
	return []interface{}{
		map[string]interface{}{"ids": map[string]interface{}{"values": q.ExcludeIDs}},
	}
}

func buildCalorieBandQuery(q RecipeQuery) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": commonFilters(q),
	}
	if ex := exclusions(q); ex != nil {
		boolQuery["must_not"] = ex
	}

	query := map[string]interface{}{"bool": boolQuery}
	if q.TargetCalories > 0 {
		scale := (q.MaxCalories - q.MinCalories) / 2
		if scale <= 0 {
			scale = q.TargetCalories * 0.1
		}
		query = map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": query,
				"functions": []interface{}{
					map[string]interface{}{
						"gauss": map[string]interface{}{
							"calories_per_serving": map[string]interface{}{
								"origin": q.TargetCalories,
								"scale":  scale,
							},
						},
					},
				},
				"boost_mode": "replace",
			},
		}
	}

	return map[string]interface{}{
		"query": query,
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": "asc"},
		},
	}
}

func buildRecipeSearchQuery(q RecipeQuery) map[string]interface{} {
	must := []interface{}{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"title^3", "diet", "meal_types"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{
		"must":   must,
		"filter": commonFilters(q),
	}
	if ex := exclusions(q); ex != nil {
		boolQuery["must_not"] = ex
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}
