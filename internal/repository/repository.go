// Package repository holds the SQL used by the workers and the query
// registry. Profiles are cached in Redis when a client is configured.
package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"bulkbuddy-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	Users     *UserRepository
	Recipes   *RecipeRepository
	MealPlans *MealPlanRepository
}

// New wires the repositories over one connection pool. rdb may be nil.
func New(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{
		Users:     NewUserRepository(db, rdb, cacheTTL),
		Recipes:   NewRecipeRepository(db),
		MealPlans: NewMealPlanRepository(db),
	}
}

// queryError converts a driver error into the job error reported upstream.
func queryError(ctx context.Context, queryType string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewQueryExecutionFailedError(queryType, err)
}
