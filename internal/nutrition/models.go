// internal/nutrition/models.go
package nutrition

// PersonProfile is the caller-owned input to the maintenance estimate.
type PersonProfile struct {
	Age            int      `json:"age"`
	WeightKg       float64  `json:"weightKg"`
	HeightCm       float64  `json:"heightCm"`
	Sex            Sex      `json:"sex"`
	BodyFatPercent *float64 `json:"bodyFatPercent,omitempty"`
	ActivityFactor float64  `json:"activityFactor"`
}

type GoalSpec struct {
	Type           GoalType `json:"goalType"`
	WeeklyChangeKg float64  `json:"weeklyChangeKg"`
	GoalWeightKg   float64  `json:"goalWeightKg"`
}

type MacroTargets struct {
	ProteinGrams float64 `json:"proteinGrams"`
	FatGrams     float64 `json:"fatGrams"`
	CarbGrams    float64 `json:"carbGrams"`
}

// CalorieResult is produced once per calculation. WeeksToGoal is nil when
// the actual weekly change is zero and the goal can never be reached.
type CalorieResult struct {
	MaintenanceCalories  float64  `json:"maintenanceCalories"`
	TargetCalories       float64  `json:"targetCalories"`
	ActualWeeklyChangeKg float64  `json:"actualWeeklyChangeKg"`
	WasClamped           bool     `json:"wasClamped"`
	WeeksToGoal          *float64 `json:"weeksToGoal"`
	ProteinGrams         float64  `json:"proteinGrams"`
	FatGrams             float64  `json:"fatGrams"`
	CarbGrams            float64  `json:"carbGrams"`
	GoalConflict         bool     `json:"goalConflict"`
	ConflictMessage      string   `json:"conflictMessage,omitempty"`
}

type MealSlot struct {
	Target float64 `json:"target"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Contains reports whether calories falls inside the slot's variance band.
func (s MealSlot) Contains(calories float64) bool {
	return calories >= s.Min && calories <= s.Max
}

type MealSlotTargets struct {
	Total     float64  `json:"total"`
	Breakfast MealSlot `json:"breakfast"`
	Lunch     MealSlot `json:"lunch"`
	Dinner    MealSlot `json:"dinner"`
}

type NamedSlot struct {
	Name string
	MealSlot
}

// Slots returns the three slots in serving order.
func (t MealSlotTargets) Slots() []NamedSlot {
	return []NamedSlot{
		{Name: "breakfast", MealSlot: t.Breakfast},
		{Name: "lunch", MealSlot: t.Lunch},
		{Name: "dinner", MealSlot: t.Dinner},
	}
}

// NutritionItem holds nutrient values per 100 g. ServingGrams is the item's
// own default serving, used when the caller passes no explicit serving.
type NutritionItem struct {
	ID             string             `json:"id,omitempty"`
	Name           string             `json:"name,omitempty"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Fat            float64            `json:"fat"`
	Carbs          float64            `json:"carbs"`
	Sugar          float64            `json:"sugar"`
	Fiber          float64            `json:"fiber"`
	Sodium         float64            `json:"sodium"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
	ServingGrams   float64            `json:"servingGrams,omitempty"`
}

type NutritionTotals struct {
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbs          float64            `json:"carbs"`
	Fat            float64            `json:"fat"`
	Sugar          float64            `json:"sugar"`
	Fiber          float64            `json:"fiber"`
	Sodium         float64            `json:"sodium"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type MacroBreakdown struct {
	ProteinCalories float64 `json:"proteinCalories"`
	CarbCalories    float64 `json:"carbCalories"`
	FatCalories     float64 `json:"fatCalories"`
	ProteinPercent  float64 `json:"proteinPercent"`
	CarbsPercent    float64 `json:"carbsPercent"`
	FatPercent      float64 `json:"fatPercent"`
}

type NutritionSummary struct {
	ItemCount int             `json:"itemCount"`
	Totals    NutritionTotals `json:"totals"`
	Macros    MacroBreakdown  `json:"macros"`
}
