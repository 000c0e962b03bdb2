package querypostgresql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repository.New(db, nil, 0)
	return NewHandler(&Config{Timeout: 5 * time.Second}, store, nil, logger.NewTestLogger(t)), mock
}

var recipeColumns = []string{"id", "title", "source", "serving_grams", "calories", "protein", "fat", "carbs", "sugar", "fiber", "sodium", "micronutrients"}

// ==========================
// Tests
// ==========================

func TestExecute_UserProfile(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectQuery("SELECT id, email, phone, age, weight_kg").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "age", "weight_kg", "height_cm", "sex", "body_fat_percent", "activity_level"}).
			AddRow("user-1", "a@example.com", nil, 30, 80.0, 180.0, "male", nil, "moderate"))

	out, err := h.Execute(context.Background(), &Input{QueryType: "user_profile", UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.RowCount)
	user, ok := out.Data.(*models.User)
	require.True(t, ok)
	assert.Equal(t, "male", user.Sex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RecipeNutritionKeepsRequestOrder(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectQuery("SELECT (.+) FROM recipes WHERE id = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(recipeColumns).
			AddRow("r-1", "Chicken breast", "usda", 150.0, 165.0, 31.0, 3.6, 0.0, 0.0, 0.0, 74.0, nil).
			AddRow("r-2", "White rice", "", 200.0, 130.0, 2.7, 0.3, 28.0, 0.1, 0.4, 1.0, nil))

	out, err := h.Execute(context.Background(), &Input{QueryType: "recipe_nutrition", RecipeIDs: []string{"r-2", "r-1", "r-2"}})
	require.NoError(t, err)

	recipes, ok := out.Data.([]models.Recipe)
	require.True(t, ok)
	require.Len(t, recipes, 2)
	assert.Equal(t, "r-2", recipes[0].ID)
	assert.Equal(t, "r-1", recipes[1].ID)
	assert.Equal(t, 2, out.RowCount)
}

func TestExecute_UserMealPlans(t *testing.T) {
	h, mock := createTestHandler(t)
	mock.ExpectQuery("SELECT id, user_id, name, target_calories, created_at").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "target_calories", "created_at"}).
			AddRow("plan-2", "user-1", "Cut week 2", 2100.0, time.Date(2026, 10, 8, 8, 0, 0, 0, time.UTC)).
			AddRow("plan-1", "user-1", "Cut week 1", 2100.0, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)))

	out, err := h.Execute(context.Background(), &Input{QueryType: "user_meal_plans", UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.RowCount)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		setup func(sqlmock.Sqlmock)
		want  errors.ErrorCode
	}{
		{
			name:  "unknown query type",
			input: Input{QueryType: "workout_history"},
			want:  errors.ErrCodeInvalidQueryType,
		},
		{
			name:  "missing user id",
			input: Input{QueryType: "user_profile"},
			want:  errors.ErrCodeInvalidNutritionInput,
		},
		{
			name:  "missing plan id",
			input: Input{QueryType: "meal_plan_items"},
			want:  errors.ErrCodeInvalidNutritionInput,
		},
		{
			name:  "profile not found",
			input: Input{QueryType: "user_profile", UserID: "ghost"},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT id, email").WithArgs("ghost").WillReturnError(sql.ErrNoRows)
			},
			want: errors.ErrCodeProfileNotFound,
		},
		{
			name:  "driver failure",
			input: Input{QueryType: "meal_plan_items", PlanID: "plan-1"},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("SELECT slot, recipe_id").WillReturnError(sql.ErrConnDone)
			},
			want: errors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := createTestHandler(t)
			if tt.setup != nil {
				tt.setup(mock)
			}
			_, err := h.Execute(context.Background(), &tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}
