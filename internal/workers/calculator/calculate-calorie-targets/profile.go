package calculatecalorietargets

import (
	"context"
	"fmt"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
)

type ProfileStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// ProfileFromUser converts a stored user into engine input. The activity
// level is resolved through the calculator's activity table.
func ProfileFromUser(u *models.User, calc *nutrition.Calculator) (nutrition.PersonProfile, error) {
	if !u.HasProfile() {
		return nutrition.PersonProfile{}, errors.NewInvalidProfileError(
			fmt.Sprintf("user %s has not completed age, weight, height, sex and activity level", u.ID))
	}

	factor, ok := calc.ActivityFactor(u.ActivityLevel)
	if !ok {
		return nutrition.PersonProfile{}, errors.NewInvalidProfileError(
			fmt.Sprintf("unknown activity level %q", u.ActivityLevel))
	}

	return nutrition.PersonProfile{
		Age:            *u.Age,
		WeightKg:       *u.WeightKg,
		HeightCm:       *u.HeightCm,
		Sex:            nutrition.Sex(u.Sex),
		BodyFatPercent: u.BodyFatPercent,
		ActivityFactor: factor,
	}, nil
}
