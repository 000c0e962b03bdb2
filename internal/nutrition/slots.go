// internal/nutrition/slots.go
package nutrition

import "math"

// PartitionMealSlots divides total calories into breakfast, lunch and
// dinner targets with a ± variance band. Each slot is rounded on its own,
// so the slot sum can drift from total by a few calories.
func (c *Calculator) PartitionMealSlots(total float64) MealSlotTargets {
	return MealSlotTargets{
		Total:     total,
		Breakfast: c.slot(total, c.cfg.BreakfastShare),
		Lunch:     c.slot(total, c.cfg.LunchShare),
		Dinner:    c.slot(total, c.cfg.DinnerShare),
	}
}

func (c *Calculator) slot(total, share float64) MealSlot {
	target := math.Round(total * share)
	return MealSlot{
		Target: target,
		Min:    math.Round(target * (1 - c.cfg.SlotVariance)),
		Max:    math.Round(target * (1 + c.cfg.SlotVariance)),
	}
}

// PartitionMealSlots partitions total with the default shares.
func PartitionMealSlots(total float64) MealSlotTargets {
	return New(DefaultConfig()).PartitionMealSlots(total)
}
