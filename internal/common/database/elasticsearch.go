package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bulkbuddy-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// RecipeIndexMapping is the mapping of the recipes index. Calories are per
// serving so calorie-band range queries can match meal slots directly.
const RecipeIndexMapping = `{
  "mappings": {
    "properties": {
      "id":                   {"type": "keyword"},
      "title":                {"type": "text"},
      "diet":                 {"type": "keyword"},
      "meal_types":           {"type": "keyword"},
      "calories_per_serving": {"type": "float"},
      "serving_grams":        {"type": "float"},
      "protein":              {"type": "float"},
      "fat":                  {"type": "float"},
      "carbs":                {"type": "float"},
      "sugar":                {"type": "float"},
      "fiber":                {"type": "float"},
      "sodium":               {"type": "float"}
    }
  }
}`

// EnsureRecipeIndex creates the recipes index when it does not exist.
func EnsureRecipeIndex(ctx context.Context, es *elasticsearch.Client, index string) error {
	res, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = es.Indices.Create(index,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(strings.NewReader(RecipeIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
