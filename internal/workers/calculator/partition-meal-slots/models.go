package partitionmealslots

import "bulkbuddy-workers/internal/nutrition"

// Input takes the daily total; targetCalories is accepted as an alias so the
// step can follow calculate-calorie-targets without an output mapping.
type Input struct {
	TotalCalories  float64 `json:"totalCalories"`
	TargetCalories float64 `json:"targetCalories"`
}

func (i Input) total() float64 {
	if i.TotalCalories != 0 {
		return i.TotalCalories
	}
	return i.TargetCalories
}

type Output struct {
	MealSlots nutrition.MealSlotTargets `json:"mealSlots"`
}
