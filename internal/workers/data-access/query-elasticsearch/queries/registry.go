package queries

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

type QueryResult struct {
	Recipes   []models.RecipeDocument
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                `json:"_id"`
			Source models.RecipeDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Searcher runs recipe queries against one index.
type Searcher struct {
	client *elasticsearch.Client
	index  string
}

func NewSearcher(client *elasticsearch.Client, index string) *Searcher {
	return &Searcher{client: client, index: index}
}

func (s *Searcher) Index() string {
	return s.index
}

// Execute builds and runs q, filling in the searcher's index when q has none.
// Failures are returned as StandardErrors.
func (s *Searcher) Execute(ctx context.Context, q RecipeQuery) (*QueryResult, error) {
	if q.Index == "" {
		q.Index = s.index
	}
	queryType := string(q.SearchType)

	req, err := BuildQuery(q)
	if err != nil {
		switch {
		case stderrors.Is(err, ErrMissingIndex):
			return nil, errors.NewIndexNotFoundError(q.Index)
		case stderrors.Is(err, ErrUnknownQueryType):
			return nil, errors.NewInvalidQueryTypeError(queryType)
		}
		return nil, errors.NewInvalidNutritionInputError(err.Error())
	}

	start := time.Now()
	res, err := req.Do(ctx, s.client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(queryType)
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(q.Index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(queryType, fmt.Errorf("%s", res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(queryType, err)
	}

	result := &QueryResult{
		Recipes:   make([]models.RecipeDocument, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		doc := hit.Source
		if doc.ID == "" {
			doc.ID = hit.ID
		}
		result.Recipes = append(result.Recipes, doc)
	}
	return result, nil
}
