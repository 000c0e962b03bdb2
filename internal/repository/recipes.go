package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/models"

	"github.com/lib/pq"
)

type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

const recipeColumns = `id, title, COALESCE(source, ''), serving_grams, calories, protein, fat, carbs, sugar, fiber, sodium, micronutrients`

// GetByIDs loads recipes keyed by id. Every id must exist.
func (r *RecipeRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Recipe, error) {
	queryType := string(models.QueryTypeRecipeNutrition)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, queryError(ctx, queryType, err)
	}
	defer rows.Close()

	out := make(map[string]models.Recipe, len(ids))
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, queryError(ctx, queryType, err)
		}
		out[recipe.ID] = recipe
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, queryType, err)
	}

	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, errors.NewRecipeNotFoundError(id)
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(s scanner) (models.Recipe, error) {
	var (
		rec   models.Recipe
		micro []byte
	)
	err := s.Scan(
		&rec.ID, &rec.Title, &rec.Source, &rec.ServingGrams,
		&rec.Calories, &rec.Protein, &rec.Fat, &rec.Carbs,
		&rec.Sugar, &rec.Fiber, &rec.Sodium, &micro,
	)
	if err != nil {
		return rec, err
	}
	if len(micro) > 0 {
		if err := json.Unmarshal(micro, &rec.Micronutrients); err != nil {
			return rec, err
		}
	}
	return rec, nil
}
