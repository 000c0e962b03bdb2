package calculatecalorietargets

import "bulkbuddy-workers/internal/nutrition"

// Input carries either an inline profile or the id of a stored user.
// ActivityLevel names an entry of the activity table and is used when the
// inline profile leaves activityFactor unset.
type Input struct {
	UserID        string                   `json:"userId,omitempty"`
	Profile       *nutrition.PersonProfile `json:"profile,omitempty"`
	ActivityLevel string                   `json:"activityLevel,omitempty"`
	Goal          nutrition.GoalSpec       `json:"goal"`
}

type Output struct {
	CalorieResult  nutrition.CalorieResult `json:"calorieResult"`
	TargetCalories float64                 `json:"targetCalories"`
	ProfileSource  string                  `json:"profileSource"`
}

const (
	ProfileSourceInline = "inline"
	ProfileSourceStored = "stored"
)
