// internal/nutrition/macros.go
package nutrition

import "math"

// AllocateMacros splits targetCalories into protein (fixed g/kg), fat (a
// share of calories) and carbs (the remainder). No value goes below zero.
func (c *Calculator) AllocateMacros(weightKg, targetCalories float64) MacroTargets {
	protein := math.Max(0, weightKg*c.cfg.ProteinPerKg)
	fat := math.Max(0, targetCalories*c.cfg.FatCalorieShare/kcalPerGramFat)
	remaining := targetCalories - protein*kcalPerGramProtein - fat*kcalPerGramFat
	carbs := math.Max(0, remaining/kcalPerGramCarb)

	return MacroTargets{
		ProteinGrams: protein,
		FatGrams:     fat,
		CarbGrams:    carbs,
	}
}

// AllocateMacros splits calories with the default constants.
func AllocateMacros(weightKg, targetCalories float64) MacroTargets {
	return New(DefaultConfig()).AllocateMacros(weightKg, targetCalories)
}
