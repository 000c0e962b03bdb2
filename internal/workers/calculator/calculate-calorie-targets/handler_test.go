package calculatecalorietargets

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
	"bulkbuddy-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestHandler(t *testing.T, profiles ProfileStore) *Handler {
	return NewHandler(HandlerOptions{
		Config:     createTestConfig(),
		Calculator: nutrition.New(nutrition.DefaultConfig()),
		Profiles:   profiles,
		Logger:     logger.NewTestLogger(t),
	})
}

func maleProfile() *nutrition.PersonProfile {
	return &nutrition.PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: nutrition.SexMale, ActivityFactor: 1.55}
}

// ==========================
// Inline profiles
// ==========================

func TestExecute_InlineDeficit(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		Profile: maleProfile(),
		Goal:    nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 75},
	})

	require.NoError(t, err)
	r := out.CalorieResult
	assert.Equal(t, ProfileSourceInline, out.ProfileSource)
	assert.Equal(t, 2873.0, r.MaintenanceCalories)
	assert.Equal(t, 2323.0, r.TargetCalories)
	assert.Equal(t, r.TargetCalories, out.TargetCalories)
	assert.False(t, r.WasClamped)
	assert.Equal(t, 0.5, r.ActualWeeklyChangeKg)
	require.NotNil(t, r.WeeksToGoal)
	assert.Equal(t, 10.0, *r.WeeksToGoal)
	assert.Equal(t, 176.0, r.ProteinGrams)
	assert.Equal(t, 64.5, r.FatGrams)
	assert.Equal(t, 259.6, r.CarbGrams)
}

func TestExecute_ClampedDeficit(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		Profile:       &nutrition.PersonProfile{Age: 25, WeightKg: 60, HeightCm: 165, Sex: nutrition.SexFemale},
		ActivityLevel: "sedentary",
		Goal:          nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 1.0, GoalWeightKg: 55},
	})

	require.NoError(t, err)
	r := out.CalorieResult
	assert.True(t, r.WasClamped)
	assert.Equal(t, 1265.0, r.TargetCalories)
	assert.Equal(t, 0.383, r.ActualWeeklyChangeKg)
	assert.GreaterOrEqual(t, r.TargetCalories, 1200.0)
}

func TestExecute_GoalConflictIsAnnotated(t *testing.T) {
	h := newTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		Profile: maleProfile(),
		Goal:    nutrition.GoalSpec{Type: nutrition.GoalSurplus, WeeklyChangeKg: 0.25, GoalWeightKg: 70},
	})

	require.NoError(t, err)
	assert.True(t, out.CalorieResult.GoalConflict)
	assert.NotEmpty(t, out.CalorieResult.ConflictMessage)
}

func TestExecute_ValidationErrors(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{
			name:  "no profile and no user",
			input: &Input{Goal: nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 70}},
			code:  errors.ErrCodeInvalidProfile,
		},
		{
			name: "implausible age",
			input: &Input{
				Profile: &nutrition.PersonProfile{Age: 0, WeightKg: 80, HeightCm: 180, Sex: nutrition.SexMale, ActivityFactor: 1.2},
				Goal:    nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 70},
			},
			code: errors.ErrCodeInvalidProfile,
		},
		{
			name:  "unknown activity level",
			input: &Input{Profile: &nutrition.PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: nutrition.SexMale}, ActivityLevel: "couch", Goal: nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 70}},
			code:  errors.ErrCodeInvalidProfile,
		},
		{
			name:  "weekly change not offered",
			input: &Input{Profile: maleProfile(), Goal: nutrition.GoalSpec{Type: nutrition.GoalSurplus, WeeklyChangeKg: 2, GoalWeightKg: 90}},
			code:  errors.ErrCodeInvalidGoal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

// ==========================
// Stored profiles
// ==========================

func TestExecute_StoredProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	store := repository.New(db, nil, 0)
	h := newTestHandler(t, store.Users)

	mock.ExpectQuery("SELECT id, email, phone, age").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "age", "weight_kg", "height_cm", "sex", "body_fat_percent", "activity_level"}).
			AddRow("user-1", "a@example.com", nil, 30, 80.0, 180.0, "male", nil, "moderate"))

	out, err := h.Execute(context.Background(), &Input{
		UserID: "user-1",
		Goal:   nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 75},
	})

	require.NoError(t, err)
	assert.Equal(t, ProfileSourceStored, out.ProfileSource)
	assert.Equal(t, 2323.0, out.TargetCalories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StoredProfileNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	h := newTestHandler(t, repository.New(db, nil, 0).Users)

	mock.ExpectQuery("SELECT id, email").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := h.Execute(context.Background(), &Input{
		UserID: "ghost",
		Goal:   nutrition.GoalSpec{Type: nutrition.GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 75},
	})

	assert.Equal(t, errors.ErrCodeProfileNotFound, errors.CodeOf(err))
}

func TestProfileFromUser_Incomplete(t *testing.T) {
	weight := 80.0
	_, err := ProfileFromUser(&models.User{ID: "u-2", WeightKg: &weight}, nutrition.New(nutrition.DefaultConfig()))

	assert.Equal(t, errors.ErrCodeInvalidProfile, errors.CodeOf(err))
}
