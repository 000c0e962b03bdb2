// internal/nutrition/aggregate.go
package nutrition

const defaultServingGrams = 100.0

// AggregateNutrition scales each per-100 g item by its serving and sums the
// results. servingGrams is positional; a missing or non-positive entry falls
// back to the item's own ServingGrams, then to 100 g.
func (c *Calculator) AggregateNutrition(items []NutritionItem, servingGrams []float64) NutritionSummary {
	var totals NutritionTotals

	for i, item := range items {
		factor := servingFor(item, servingGrams, i) / 100

		totals.Calories += item.Calories * factor
		totals.Protein += item.Protein * factor
		totals.Carbs += item.Carbs * factor
		totals.Fat += item.Fat * factor
		totals.Sugar += item.Sugar * factor
		totals.Fiber += item.Fiber * factor
		totals.Sodium += item.Sodium * factor

		for name, amount := range item.Micronutrients {
			if totals.Micronutrients == nil {
				totals.Micronutrients = make(map[string]float64)
			}
			totals.Micronutrients[name] += amount * factor
		}
	}

	return NutritionSummary{
		ItemCount: len(items),
		Totals:    totals,
		Macros:    MacroPercentages(totals.Protein, totals.Carbs, totals.Fat),
	}
}

func servingFor(item NutritionItem, servingGrams []float64, i int) float64 {
	if i < len(servingGrams) && servingGrams[i] > 0 {
		return servingGrams[i]
	}
	if item.ServingGrams > 0 {
		return item.ServingGrams
	}
	return defaultServingGrams
}

// MacroPercentages converts macro grams to calories and each macro's share
// of their sum, rounded to two decimals. All shares are 0 when the sum is 0.
func MacroPercentages(protein, carbs, fat float64) MacroBreakdown {
	b := MacroBreakdown{
		ProteinCalories: protein * kcalPerGramProtein,
		CarbCalories:    carbs * kcalPerGramCarb,
		FatCalories:     fat * kcalPerGramFat,
	}

	sum := b.ProteinCalories + b.CarbCalories + b.FatCalories
	if sum <= 0 {
		return b
	}

	b.ProteinPercent = roundTo(b.ProteinCalories/sum*100, 2)
	b.CarbsPercent = roundTo(b.CarbCalories/sum*100, 2)
	b.FatPercent = roundTo(b.FatCalories/sum*100, 2)
	return b
}

// AggregateNutrition aggregates items with the default constants.
func AggregateNutrition(items []NutritionItem, servingGrams []float64) NutritionSummary {
	return New(DefaultConfig()).AggregateNutrition(items, servingGrams)
}
