// internal/nutrition/goal.go
package nutrition

import (
	"fmt"
	"math"
)

const minWeeklyChange = 1e-9

// ComputeCalorieGoal turns a maintenance estimate and a goal into a daily
// target, applying the deficit clamp and the absolute calorie floor. The
// result's macros are allocated against the final target.
func (c *Calculator) ComputeCalorieGoal(maintenance float64, goal GoalSpec, sex Sex, weightKg float64) CalorieResult {
	delta := goal.WeeklyChangeKg * c.cfg.KcalPerKg / daysPerWeek

	target := maintenance + delta
	if goal.Type == GoalDeficit {
		target = maintenance - delta
	}

	minCalories := c.MinCalories(sex)
	clamped := false

	if goal.Type == GoalDeficit {
		lowest := maintenance * (1 - c.cfg.MaxDeficitFraction)
		if target < lowest {
			target = math.Max(lowest, minCalories)
			clamped = true
		}
	}

	if target < minCalories {
		target = minCalories
		clamped = true
	}

	actual := goal.WeeklyChangeKg
	if clamped {
		actual = math.Abs(maintenance-target) * daysPerWeek / c.cfg.KcalPerKg
	}

	macros := c.AllocateMacros(weightKg, target)

	result := CalorieResult{
		MaintenanceCalories:  maintenance,
		TargetCalories:       target,
		ActualWeeklyChangeKg: actual,
		WasClamped:           clamped,
		WeeksToGoal:          weeksToGoal(weightKg, goal.GoalWeightKg, actual),
		ProteinGrams:         macros.ProteinGrams,
		FatGrams:             macros.FatGrams,
		CarbGrams:            macros.CarbGrams,
	}

	if msg, conflict := goalConflict(goal, weightKg); conflict {
		result.GoalConflict = true
		result.ConflictMessage = msg
	}

	return result
}

// Calculate runs the estimator and the goal adjuster for one profile.
func (c *Calculator) Calculate(p PersonProfile, goal GoalSpec) CalorieResult {
	maintenance := c.EstimateMaintenanceCalories(p)
	return c.ComputeCalorieGoal(maintenance, goal, p.Sex, p.WeightKg)
}

func weeksToGoal(weightKg, goalWeightKg, weeklyChange float64) *float64 {
	if math.IsNaN(weeklyChange) || math.IsInf(weeklyChange, 0) || weeklyChange < minWeeklyChange {
		return nil
	}
	weeks := math.Abs(goalWeightKg-weightKg) / weeklyChange
	return &weeks
}

func goalConflict(goal GoalSpec, weightKg float64) (string, bool) {
	switch {
	case goal.Type == GoalSurplus && goal.GoalWeightKg < weightKg:
		return fmt.Sprintf("goal weight %.1f kg is below current weight %.1f kg for a surplus goal", goal.GoalWeightKg, weightKg), true
	case goal.Type == GoalDeficit && goal.GoalWeightKg > weightKg:
		return fmt.Sprintf("goal weight %.1f kg is above current weight %.1f kg for a deficit goal", goal.GoalWeightKg, weightKg), true
	}
	return "", false
}

// Rounded returns a copy suitable for display: calories as integers, grams
// to one decimal, weekly change to three decimals and weeks to one.
func (r CalorieResult) Rounded() CalorieResult {
	out := r
	out.MaintenanceCalories = math.Round(r.MaintenanceCalories)
	out.TargetCalories = math.Round(r.TargetCalories)
	out.ActualWeeklyChangeKg = roundTo(r.ActualWeeklyChangeKg, 3)
	out.ProteinGrams = roundTo(r.ProteinGrams, 1)
	out.FatGrams = roundTo(r.FatGrams, 1)
	out.CarbGrams = roundTo(r.CarbGrams, 1)
	if r.WeeksToGoal != nil {
		w := roundTo(*r.WeeksToGoal, 1)
		out.WeeksToGoal = &w
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// ComputeCalorieGoal evaluates the goal adjuster with the default constants.
func ComputeCalorieGoal(maintenance float64, goal GoalSpec, sex Sex, weightKg float64) CalorieResult {
	return New(DefaultConfig()).ComputeCalorieGoal(maintenance, goal, sex, weightKg)
}

// Calculate evaluates a profile and goal with the default constants.
func Calculate(p PersonProfile, goal GoalSpec) CalorieResult {
	return New(DefaultConfig()).Calculate(p, goal)
}
