// internal/nutrition/nutrition_test.go
package nutrition

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 0.01

func floatPtr(v float64) *float64 { return &v }

// ==========================
// BMR / TDEE
// ==========================

func TestEstimateMaintenanceCalories(t *testing.T) {
	tests := []struct {
		name     string
		profile  PersonProfile
		expected float64
	}{
		{
			name:     "male harris-benedict",
			profile:  PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: SexMale, ActivityFactor: 1.0},
			expected: 1853.632,
		},
		{
			name:     "female harris-benedict",
			profile:  PersonProfile{Age: 25, WeightKg: 60, HeightCm: 165, Sex: SexFemale, ActivityFactor: 1.0},
			expected: 1405.333,
		},
		{
			name:     "male with activity factor",
			profile:  PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: SexMale, ActivityFactor: 1.55},
			expected: 1853.632 * 1.55,
		},
		{
			name: "katch-mcardle ignores sex and height",
			profile: PersonProfile{
				Age: 40, WeightKg: 80, HeightCm: 150, Sex: SexFemale,
				BodyFatPercent: floatPtr(20), ActivityFactor: 1.2,
			},
			expected: (370 + 21.6*64) * 1.2,
		},
		{
			name:     "unknown sex uses female equation",
			profile:  PersonProfile{Age: 25, WeightKg: 60, HeightCm: 165, Sex: "other", ActivityFactor: 1.0},
			expected: 1405.333,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EstimateMaintenanceCalories(tt.profile), tolerance)
		})
	}
}

func TestEstimateMaintenanceCalories_PositiveForAdults(t *testing.T) {
	c := New(DefaultConfig())
	for _, sex := range []Sex{SexMale, SexFemale} {
		for age := 18; age <= 80; age += 31 {
			for _, factor := range c.Config().ActivityFactors {
				p := PersonProfile{Age: age, WeightKg: 45, HeightCm: 150, Sex: sex, ActivityFactor: factor}
				assert.Greater(t, c.EstimateMaintenanceCalories(p), 0.0)
			}
		}
	}
}

// ==========================
// Goal Adjuster
// ==========================

func TestComputeCalorieGoal(t *testing.T) {
	tests := []struct {
		name           string
		maintenance    float64
		goal           GoalSpec
		sex            Sex
		weight         float64
		expectedTarget float64
		expectedActual float64
		expectedClamp  bool
		expectedWeeks  *float64
	}{
		{
			name:           "surplus within limits",
			maintenance:    2500,
			goal:           GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.25, GoalWeightKg: 75},
			sex:            SexMale,
			weight:         70,
			expectedTarget: 2775,
			expectedActual: 0.25,
			expectedWeeks:  floatPtr(20),
		},
		{
			name:           "deficit within limits",
			maintenance:    2500,
			goal:           GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 80},
			sex:            SexMale,
			weight:         90,
			expectedTarget: 1950,
			expectedActual: 0.5,
			expectedWeeks:  floatPtr(20),
		},
		{
			name:           "deficit clamped to 75 percent of maintenance",
			maintenance:    2000,
			goal:           GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 1.0, GoalWeightKg: 70},
			sex:            SexMale,
			weight:         80,
			expectedTarget: 1500,
			expectedActual: 500 * 7.0 / 7700,
			expectedClamp:  true,
			expectedWeeks:  floatPtr(10 / (500 * 7.0 / 7700)),
		},
		{
			name:           "deficit clamped to male floor above 75 percent",
			maintenance:    1800,
			goal:           GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 1.0, GoalWeightKg: 70},
			sex:            SexMale,
			weight:         75,
			expectedTarget: 1500,
			expectedActual: 300 * 7.0 / 7700,
			expectedClamp:  true,
			expectedWeeks:  floatPtr(5 / (300 * 7.0 / 7700)),
		},
		{
			name:           "surplus raised to female floor",
			maintenance:    1000,
			goal:           GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.125, GoalWeightKg: 50},
			sex:            SexFemale,
			weight:         45,
			expectedTarget: 1200,
			expectedActual: 200 * 7.0 / 7700,
			expectedClamp:  true,
			expectedWeeks:  floatPtr(5 / (200 * 7.0 / 7700)),
		},
		{
			name:           "floor equal to maintenance leaves goal unreachable",
			maintenance:    1200,
			goal:           GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 0.25, GoalWeightKg: 50},
			sex:            SexFemale,
			weight:         55,
			expectedTarget: 1200,
			expectedActual: 0,
			expectedClamp:  true,
			expectedWeeks:  nil,
		},
		{
			name:           "zero weekly change",
			maintenance:    2000,
			goal:           GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0, GoalWeightKg: 80},
			sex:            SexMale,
			weight:         70,
			expectedTarget: 2000,
			expectedActual: 0,
			expectedWeeks:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeCalorieGoal(tt.maintenance, tt.goal, tt.sex, tt.weight)

			assert.Equal(t, tt.maintenance, result.MaintenanceCalories)
			assert.InDelta(t, tt.expectedTarget, result.TargetCalories, tolerance)
			assert.InDelta(t, tt.expectedActual, result.ActualWeeklyChangeKg, 0.0001)
			assert.Equal(t, tt.expectedClamp, result.WasClamped)

			if tt.expectedWeeks == nil {
				assert.Nil(t, result.WeeksToGoal)
			} else {
				require.NotNil(t, result.WeeksToGoal)
				assert.InDelta(t, *tt.expectedWeeks, *result.WeeksToGoal, tolerance)
			}

			macros := AllocateMacros(tt.weight, result.TargetCalories)
			assert.Equal(t, macros.ProteinGrams, result.ProteinGrams)
			assert.Equal(t, macros.FatGrams, result.FatGrams)
			assert.Equal(t, macros.CarbGrams, result.CarbGrams)
		})
	}
}

func TestComputeCalorieGoal_DeficitClampExample(t *testing.T) {
	result := ComputeCalorieGoal(2000, GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 1.0, GoalWeightKg: 70}, SexMale, 80)

	assert.Equal(t, 1500.0, result.TargetCalories)
	assert.True(t, result.WasClamped)
	assert.InDelta(t, 0.4545, result.ActualWeeklyChangeKg, 0.0001)
}

func TestComputeCalorieGoal_GoalConflict(t *testing.T) {
	tests := []struct {
		name     string
		goal     GoalSpec
		conflict bool
	}{
		{"surplus toward lower weight", GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.25, GoalWeightKg: 60}, true},
		{"deficit toward higher weight", GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 0.25, GoalWeightKg: 80}, true},
		{"surplus toward higher weight", GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.25, GoalWeightKg: 80}, false},
		{"deficit toward lower weight", GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 0.25, GoalWeightKg: 60}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeCalorieGoal(2500, tt.goal, SexMale, 70)
			assert.Equal(t, tt.conflict, result.GoalConflict)
			if tt.conflict {
				assert.NotEmpty(t, result.ConflictMessage)
				assert.Greater(t, result.TargetCalories, 0.0)
			} else {
				assert.Empty(t, result.ConflictMessage)
			}
		})
	}
}

func TestComputeCalorieGoal_NeverBelowFloor(t *testing.T) {
	c := New(DefaultConfig())
	for _, maintenance := range []float64{800, 1200, 1600, 2200, 3500} {
		for goalType, rates := range c.Config().WeeklyChangeOptions {
			for _, rate := range rates {
				for _, sex := range []Sex{SexMale, SexFemale} {
					goal := GoalSpec{Type: GoalType(goalType), WeeklyChangeKg: rate, GoalWeightKg: 70}
					result := c.ComputeCalorieGoal(maintenance, goal, sex, 70)
					assert.GreaterOrEqual(t, result.TargetCalories, c.MinCalories(sex))
					assert.GreaterOrEqual(t, result.ActualWeeklyChangeKg, 0.0)
				}
			}
		}
	}
}

func TestCalculate(t *testing.T) {
	profile := PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: SexMale, ActivityFactor: 1.55}
	goal := GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.25, GoalWeightKg: 85}

	result := Calculate(profile, goal)

	assert.InDelta(t, 1853.632*1.55, result.MaintenanceCalories, tolerance)
	assert.InDelta(t, 1853.632*1.55+275, result.TargetCalories, tolerance)
	assert.False(t, result.WasClamped)
	require.NotNil(t, result.WeeksToGoal)
	assert.InDelta(t, 20, *result.WeeksToGoal, tolerance)
	assert.InDelta(t, 176, result.ProteinGrams, tolerance)
}

func TestCalorieResult_Rounded(t *testing.T) {
	weeks := 21.9986
	r := CalorieResult{
		MaintenanceCalories:  2873.1296,
		TargetCalories:       3148.4,
		ActualWeeklyChangeKg: 0.454545,
		WeeksToGoal:          &weeks,
		ProteinGrams:         176.04,
		FatGrams:             87.456,
		CarbGrams:            393.04,
	}

	out := r.Rounded()

	assert.Equal(t, 2873.0, out.MaintenanceCalories)
	assert.Equal(t, 3148.0, out.TargetCalories)
	assert.Equal(t, 0.455, out.ActualWeeklyChangeKg)
	assert.Equal(t, 176.0, out.ProteinGrams)
	assert.Equal(t, 87.5, out.FatGrams)
	assert.Equal(t, 393.0, out.CarbGrams)
	require.NotNil(t, out.WeeksToGoal)
	assert.Equal(t, 22.0, *out.WeeksToGoal)
	assert.Equal(t, 21.9986, weeks, "original must not be modified")
}

// ==========================
// Macro Allocator
// ==========================

func TestAllocateMacros(t *testing.T) {
	tests := []struct {
		name            string
		weight          float64
		target          float64
		expectedProtein float64
		expectedFat     float64
		expectedCarbs   float64
	}{
		{"standard split", 70, 2500, 154, 69.444, 314.75},
		{"carbs floored at zero", 100, 1000, 220, 27.778, 0},
		{"zero calories", 70, 0, 154, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AllocateMacros(tt.weight, tt.target)
			assert.InDelta(t, tt.expectedProtein, m.ProteinGrams, tolerance)
			assert.InDelta(t, tt.expectedFat, m.FatGrams, tolerance)
			assert.InDelta(t, tt.expectedCarbs, m.CarbGrams, tolerance)
		})
	}
}

func TestAllocateMacros_NonNegative(t *testing.T) {
	m := AllocateMacros(-10, -500)
	assert.GreaterOrEqual(t, m.ProteinGrams, 0.0)
	assert.GreaterOrEqual(t, m.FatGrams, 0.0)
	assert.GreaterOrEqual(t, m.CarbGrams, 0.0)
}

// ==========================
// Meal Slot Partitioner
// ==========================

func TestPartitionMealSlots(t *testing.T) {
	slots := PartitionMealSlots(2000)

	assert.Equal(t, 2000.0, slots.Total)
	assert.Equal(t, MealSlot{Target: 500, Min: 450, Max: 550}, slots.Breakfast)
	assert.Equal(t, MealSlot{Target: 700, Min: 630, Max: 770}, slots.Lunch)
	assert.Equal(t, MealSlot{Target: 800, Min: 720, Max: 880}, slots.Dinner)
}

func TestPartitionMealSlots_IndependentRounding(t *testing.T) {
	for _, total := range []float64{1999, 2001, 2345, 3117} {
		slots := PartitionMealSlots(total)
		sum := slots.Breakfast.Target + slots.Lunch.Target + slots.Dinner.Target
		assert.InDelta(t, total, sum, 3, "total %v", total)

		for _, s := range slots.Slots() {
			assert.LessOrEqual(t, s.Min, s.Target, s.Name)
			assert.GreaterOrEqual(t, s.Max, s.Target, s.Name)
		}
	}
}

func TestMealSlotTargets_Slots(t *testing.T) {
	slots := PartitionMealSlots(2000).Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, "breakfast", slots[0].Name)
	assert.Equal(t, "lunch", slots[1].Name)
	assert.Equal(t, "dinner", slots[2].Name)
	assert.True(t, slots[2].Contains(850))
	assert.False(t, slots[2].Contains(900))
}

// ==========================
// Nutrition Aggregator
// ==========================

func chicken() NutritionItem {
	return NutritionItem{
		ID: "chicken", Calories: 165, Protein: 31, Fat: 3.6, Sodium: 74,
		Micronutrients: map[string]float64{"iron": 1.0},
	}
}

func rice() NutritionItem {
	return NutritionItem{
		ID: "rice", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3, Fiber: 0.4,
		Micronutrients: map[string]float64{"iron": 0.2, "magnesium": 12},
	}
}

func TestAggregateNutrition(t *testing.T) {
	summary := AggregateNutrition([]NutritionItem{chicken(), rice()}, []float64{200, 150})

	assert.Equal(t, 2, summary.ItemCount)
	assert.InDelta(t, 525, summary.Totals.Calories, tolerance)
	assert.InDelta(t, 66.05, summary.Totals.Protein, tolerance)
	assert.InDelta(t, 42, summary.Totals.Carbs, tolerance)
	assert.InDelta(t, 7.65, summary.Totals.Fat, tolerance)
	assert.InDelta(t, 0.6, summary.Totals.Fiber, tolerance)
	assert.InDelta(t, 148, summary.Totals.Sodium, tolerance)
	assert.InDelta(t, 2.3, summary.Totals.Micronutrients["iron"], tolerance)
	assert.InDelta(t, 18, summary.Totals.Micronutrients["magnesium"], tolerance)

	m := summary.Macros
	assert.InDelta(t, 100, m.ProteinPercent+m.CarbsPercent+m.FatPercent, 0.05)
}

func TestAggregateNutrition_OrderIndependent(t *testing.T) {
	a := AggregateNutrition([]NutritionItem{chicken(), rice()}, []float64{200, 150})
	b := AggregateNutrition([]NutritionItem{rice(), chicken()}, []float64{150, 200})

	assert.InDelta(t, a.Totals.Calories, b.Totals.Calories, 1e-9)
	assert.InDelta(t, a.Totals.Protein, b.Totals.Protein, 1e-9)
	assert.InDelta(t, a.Totals.Carbs, b.Totals.Carbs, 1e-9)
	assert.InDelta(t, a.Totals.Fat, b.Totals.Fat, 1e-9)
	assert.Equal(t, a.Macros, b.Macros)
}

func TestAggregateNutrition_ServingFallback(t *testing.T) {
	withDefault := rice()
	withDefault.ServingGrams = 50

	tests := []struct {
		name     string
		items    []NutritionItem
		servings []float64
		expected float64
	}{
		{"missing serving uses 100 g", []NutritionItem{chicken()}, nil, 165},
		{"missing serving uses item serving", []NutritionItem{withDefault}, nil, 65},
		{"zero serving uses item serving", []NutritionItem{withDefault}, []float64{0}, 65},
		{"explicit serving wins", []NutritionItem{withDefault}, []float64{200}, 260},
		{"short servings slice", []NutritionItem{chicken(), withDefault}, []float64{200}, 330 + 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := AggregateNutrition(tt.items, tt.servings)
			assert.InDelta(t, tt.expected, summary.Totals.Calories, tolerance)
		})
	}
}

func TestAggregateNutrition_Empty(t *testing.T) {
	summary := AggregateNutrition(nil, nil)

	assert.Equal(t, 0, summary.ItemCount)
	assert.Equal(t, NutritionTotals{}, summary.Totals)
	assert.Equal(t, MacroBreakdown{}, summary.Macros)
}

func TestMacroPercentages(t *testing.T) {
	b := MacroPercentages(50, 200, 20)

	assert.Equal(t, 200.0, b.ProteinCalories)
	assert.Equal(t, 800.0, b.CarbCalories)
	assert.Equal(t, 180.0, b.FatCalories)
	assert.Equal(t, 16.95, b.ProteinPercent)
	assert.Equal(t, 67.8, b.CarbsPercent)
	assert.Equal(t, 15.25, b.FatPercent)
}

func TestMacroPercentages_ZeroMacros(t *testing.T) {
	b := MacroPercentages(0, 0, 0)
	assert.Zero(t, b.ProteinPercent)
	assert.Zero(t, b.CarbsPercent)
	assert.Zero(t, b.FatPercent)
}

// ==========================
// Configuration
// ==========================

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{KcalPerKg: 7000}.WithDefaults()

	assert.Equal(t, 7000.0, cfg.KcalPerKg)
	assert.Equal(t, 0.25, cfg.MaxDeficitFraction)
	assert.Equal(t, 1500.0, cfg.MinCaloriesMale)
	assert.Equal(t, 0.35, cfg.LunchShare)
	assert.Len(t, cfg.ActivityFactors, 5)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0}, cfg.WeeklyChangeOptions["deficit"])
}

func TestConfig_WithDefaults_ZeroMeansDefault(t *testing.T) {
	cfg := Config{
		MaxDeficitFraction: 0,
		SlotVariance:       0,
		BreakfastShare:     0.3,
		LunchShare:         0.3,
		DinnerShare:        0.4,
	}.WithDefaults()

	assert.Equal(t, 0.25, cfg.MaxDeficitFraction)
	assert.Equal(t, 0.10, cfg.SlotVariance)
	assert.Equal(t, 0.3, cfg.BreakfastShare)
	assert.Equal(t, 7700.0, Config{}.WithDefaults().KcalPerKg)
}

func TestCalculator_ConfigIsolation(t *testing.T) {
	factors := map[string]float64{"sedentary": 1.2}
	c := New(Config{ActivityFactors: factors})

	factors["sedentary"] = 9
	got := c.Config()
	got.ActivityFactors["sedentary"] = 7

	f, ok := c.ActivityFactor("sedentary")
	require.True(t, ok)
	assert.Equal(t, 1.2, f)

	_, ok = c.ActivityFactor("extreme")
	assert.False(t, ok)
}

func TestCalculator_CustomConstants(t *testing.T) {
	c := New(Config{KcalPerKg: 7000, ProteinPerKg: 2.0})

	result := c.ComputeCalorieGoal(2500, GoalSpec{Type: GoalSurplus, WeeklyChangeKg: 0.5, GoalWeightKg: 80}, SexMale, 70)

	assert.InDelta(t, 3000, result.TargetCalories, tolerance)
	assert.InDelta(t, 140, result.ProteinGrams, tolerance)
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	c := New(DefaultConfig())
	profile := PersonProfile{Age: 30, WeightKg: 80, HeightCm: 180, Sex: SexMale, ActivityFactor: 1.55}
	goal := GoalSpec{Type: GoalDeficit, WeeklyChangeKg: 0.5, GoalWeightKg: 75}
	expected := c.Calculate(profile, goal)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, expected.TargetCalories, c.Calculate(profile, goal).TargetCalories)
		}()
	}
	wg.Wait()
}
