package queries

import (
	"context"
	"fmt"

	"bulkbuddy-workers/internal/repository"
)

func UserProfile(ctx context.Context, store *repository.Store, params Params) (interface{}, int, error) {
	if params.UserID == "" {
		return nil, 0, fmt.Errorf("%w: userId", ErrMissingParam)
	}
	user, err := store.Users.GetByID(ctx, params.UserID)
	if err != nil {
		return nil, 0, err
	}
	return user, 1, nil
}
