package fetchfoodnutrition

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/nutrition"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Names() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockLookup) Lookup(ctx context.Context, provider, query string) (*nutrition.NutritionItem, string, error) {
	args := m.Called(ctx, provider, query)
	item, _ := args.Get(0).(*nutrition.NutritionItem)
	return item, args.String(1), args.Error(2)
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, CacheTTL: 10 * time.Minute}
}

func oats() *nutrition.NutritionItem {
	return &nutrition.NutritionItem{ID: "173904", Name: "Oats", Calories: 389, Protein: 16.9, Fat: 6.9, Carbs: 66.3, Fiber: 10.6, ServingGrams: 100}
}

// ==========================
// Tests
// ==========================

func TestExecute_CacheMissStoresResult(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	lookup := new(mockLookup)
	lookup.On("Names").Return([]string{"usda", "edamam"})
	lookup.On("Lookup", mock.Anything, "usda", "173904").Return(oats(), "usda", nil).Once()

	h := NewHandler(HandlerOptions{Config: createTestConfig(), Providers: lookup, Redis: rdb, Logger: logger.NewTestLogger(t)})

	out, err := h.Execute(context.Background(), &Input{Query: "173904"})
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, "usda", out.Provider)
	assert.Equal(t, 389.0, out.Food.Calories)
	assert.True(t, mr.Exists("nutrition:usda:173904"))

	// served from cache the second time; Lookup is registered Once
	again, err := h.Execute(context.Background(), &Input{Provider: "USDA", Query: " 173904 "})
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, out.Food, again.Food)
	lookup.AssertExpectations(t)
}

func TestExecute_CacheHitWithRedisMock(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	payload, err := json.Marshal(oats())
	require.NoError(t, err)
	rmock.ExpectGet("nutrition:edamam:oats").SetVal(string(payload))

	lookup := new(mockLookup)
	h := NewHandler(HandlerOptions{Config: createTestConfig(), Providers: lookup, Redis: rdb, Logger: logger.NewNoOpLogger()})

	out, err := h.Execute(context.Background(), &Input{Provider: "edamam", Query: "Oats"})

	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.Equal(t, "Oats", out.Food.Name)
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestExecute_ProviderErrorsPropagate(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, "spoonacular", "9266").
		Return(nil, "spoonacular", errors.NewNutritionProviderTimeoutError("spoonacular"))

	h := NewHandler(HandlerOptions{Config: createTestConfig(), Providers: lookup, Logger: logger.NewNoOpLogger()})

	_, err := h.Execute(context.Background(), &Input{Provider: "spoonacular", Query: "9266"})

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNutritionProviderTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecute_RequiresQuery(t *testing.T) {
	h := NewHandler(HandlerOptions{Config: createTestConfig(), Providers: new(mockLookup), Logger: logger.NewNoOpLogger()})

	_, err := h.Execute(context.Background(), &Input{Provider: "usda", Query: "  "})

	assert.Equal(t, errors.ErrCodeInvalidNutritionInput, errors.CodeOf(err))
}
