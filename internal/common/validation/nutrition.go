package validation

import (
	"math"
	"strconv"

	"bulkbuddy-workers/internal/nutrition"
)

const (
	minAge = 1
	maxAge = 120

	// tolerance for matching enumerated float values
	epsilon = 1e-9
)

// ValidateProfile runs the plausibility checks the engine itself skips.
func ValidateProfile(p nutrition.PersonProfile, cfg nutrition.Config) *ValidationResult {
	r := newResult()

	if p.Age < minAge || p.Age > maxAge {
		r.add("age", "OUT_OF_RANGE", "age must be between %d and %d", minAge, maxAge)
	}
	positive(r, "weightKg", p.WeightKg)
	positive(r, "heightCm", p.HeightCm)

	if p.Sex != nutrition.SexMale && p.Sex != nutrition.SexFemale {
		r.add("sex", "INVALID_ENUM", "sex must be male or female")
	}

	if p.BodyFatPercent != nil {
		bf := *p.BodyFatPercent
		if !finite(bf) || bf < 0 || bf >= 100 {
			r.add("bodyFatPercent", "OUT_OF_RANGE", "bodyFatPercent must be at least 0 and below 100")
		}
	}

	if !finite(p.ActivityFactor) || !containsFactor(cfg.WithDefaults().ActivityFactors, p.ActivityFactor) {
		r.add("activityFactor", "INVALID_ENUM", "activityFactor %v is not a supported activity level", p.ActivityFactor)
	}
	return r
}

// ValidateGoal checks the goal type and that the weekly rate is one of the
// options offered for it.
func ValidateGoal(g nutrition.GoalSpec, cfg nutrition.Config) *ValidationResult {
	r := newResult()

	options, ok := cfg.WithDefaults().WeeklyChangeOptions[string(g.Type)]
	if !ok || (g.Type != nutrition.GoalSurplus && g.Type != nutrition.GoalDeficit) {
		r.add("goalType", "INVALID_ENUM", "goalType must be surplus or deficit")
	} else if !finite(g.WeeklyChangeKg) || !containsValue(options, g.WeeklyChangeKg) {
		r.add("weeklyChangeKg", "INVALID_ENUM", "weeklyChangeKg %v is not offered for %s goals", g.WeeklyChangeKg, g.Type)
	}
	positive(r, "goalWeightKg", g.GoalWeightKg)
	return r
}

// ValidateServings rejects negative or non-finite serving sizes. Zero means
// "use the item default".
func ValidateServings(servings []float64, itemCount int) *ValidationResult {
	r := newResult()
	if len(servings) > itemCount {
		r.add("servings", "TOO_MANY", "%d servings given for %d items", len(servings), itemCount)
	}
	for i, s := range servings {
		if !finite(s) || s < 0 {
			r.add(indexed("servings", i), "OUT_OF_RANGE", "serving must be a non-negative number of grams")
		}
	}
	return r
}

// ValidateItems rejects negative or non-finite nutrient values.
func ValidateItems(items []nutrition.NutritionItem) *ValidationResult {
	r := newResult()
	for i, item := range items {
		fields := map[string]float64{
			"calories":     item.Calories,
			"protein":      item.Protein,
			"fat":          item.Fat,
			"carbs":        item.Carbs,
			"sugar":        item.Sugar,
			"fiber":        item.Fiber,
			"sodium":       item.Sodium,
			"servingGrams": item.ServingGrams,
		}
		for name, v := range fields {
			if !finite(v) || v < 0 {
				r.add(indexed("items", i)+"."+name, "OUT_OF_RANGE", "%s must be a non-negative number", name)
			}
		}
		for name, v := range item.Micronutrients {
			if !finite(v) || v < 0 {
				r.add(indexed("items", i)+".micronutrients."+name, "OUT_OF_RANGE", "%s must be a non-negative number", name)
			}
		}
	}
	return r
}

// ValidateCalories checks a calorie total handed to the slot partitioner.
func ValidateCalories(field string, calories float64) *ValidationResult {
	r := newResult()
	positive(r, field, calories)
	return r
}

func positive(r *ValidationResult, field string, v float64) {
	if !finite(v) || v <= 0 {
		r.add(field, "OUT_OF_RANGE", "%s must be a positive number", field)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func containsFactor(factors map[string]float64, v float64) bool {
	for _, f := range factors {
		if math.Abs(f-v) < epsilon {
			return true
		}
	}
	return false
}

func containsValue(values []float64, v float64) bool {
	for _, o := range values {
		if math.Abs(o-v) < epsilon {
			return true
		}
	}
	return false
}

func indexed(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}
