// internal/nutrition/config.go
package nutrition

// Sex selects the BMR equation and the absolute calorie floor.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// GoalType is the direction of the requested weight change.
type GoalType string

const (
	GoalSurplus GoalType = "surplus"
	GoalDeficit GoalType = "deficit"
)

// Config bundles every constant the engine uses. It is decoded from the
// "nutrition" section of the service config; zero fields fall back to
// DefaultConfig values.
type Config struct {
	KcalPerKg          float64 `mapstructure:"kcal_per_kg"`
	MaxDeficitFraction float64 `mapstructure:"max_deficit_fraction"`
	MinCaloriesMale    float64 `mapstructure:"min_calories_male"`
	MinCaloriesFemale  float64 `mapstructure:"min_calories_female"`
	ProteinPerKg       float64 `mapstructure:"protein_per_kg"`
	FatCalorieShare    float64 `mapstructure:"fat_calorie_share"`

	BreakfastShare float64 `mapstructure:"breakfast_share"`
	LunchShare     float64 `mapstructure:"lunch_share"`
	DinnerShare    float64 `mapstructure:"dinner_share"`
	SlotVariance   float64 `mapstructure:"slot_variance"`

	// ActivityFactors maps activity level names to TDEE multipliers.
	ActivityFactors map[string]float64 `mapstructure:"activity_factors"`
	// WeeklyChangeOptions lists the accepted kg/week rates per goal type.
	WeeklyChangeOptions map[string][]float64 `mapstructure:"weekly_change_options"`
}

const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarb    = 4.0
	kcalPerGramFat     = 9.0
	daysPerWeek        = 7.0
)

// DefaultConfig returns a fresh copy of the stock engine constants.
func DefaultConfig() Config {
	return Config{
		KcalPerKg:          7700,
		MaxDeficitFraction: 0.25,
		MinCaloriesMale:    1500,
		MinCaloriesFemale:  1200,
		ProteinPerKg:       2.2,
		FatCalorieShare:    0.25,
		BreakfastShare:     0.25,
		LunchShare:         0.35,
		DinnerShare:        0.40,
		SlotVariance:       0.10,
		ActivityFactors: map[string]float64{
			"sedentary":   1.2,
			"light":       1.375,
			"moderate":    1.55,
			"active":      1.725,
			"very_active": 1.9,
		},
		WeeklyChangeOptions: map[string][]float64{
			string(GoalSurplus): {0.125, 0.25, 0.5},
			string(GoalDeficit): {0.25, 0.5, 0.75, 1.0},
		},
	}
}

// WithDefaults fills every zero-valued field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.KcalPerKg == 0 {
		c.KcalPerKg = d.KcalPerKg
	}
	if c.MaxDeficitFraction == 0 {
		c.MaxDeficitFraction = d.MaxDeficitFraction
	}
	if c.MinCaloriesMale == 0 {
		c.MinCaloriesMale = d.MinCaloriesMale
	}
	if c.MinCaloriesFemale == 0 {
		c.MinCaloriesFemale = d.MinCaloriesFemale
	}
	if c.ProteinPerKg == 0 {
		c.ProteinPerKg = d.ProteinPerKg
	}
	if c.FatCalorieShare == 0 {
		c.FatCalorieShare = d.FatCalorieShare
	}
	if c.BreakfastShare == 0 && c.LunchShare == 0 && c.DinnerShare == 0 {
		c.BreakfastShare, c.LunchShare, c.DinnerShare = d.BreakfastShare, d.LunchShare, d.DinnerShare
	}
	if c.SlotVariance == 0 {
		c.SlotVariance = d.SlotVariance
	}
	if len(c.ActivityFactors) == 0 {
		c.ActivityFactors = d.ActivityFactors
	} else {
		c.ActivityFactors = copyFactors(c.ActivityFactors)
	}
	if len(c.WeeklyChangeOptions) == 0 {
		c.WeeklyChangeOptions = d.WeeklyChangeOptions
	} else {
		c.WeeklyChangeOptions = copyOptions(c.WeeklyChangeOptions)
	}
	return c
}

func copyFactors(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyOptions(in map[string][]float64) map[string][]float64 {
	out := make(map[string][]float64, len(in))
	for k, v := range in {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// Calculator evaluates the calorie and nutrition formulas for one Config.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// New returns a Calculator for cfg with defaults applied.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg.WithDefaults()}
}

// Config returns a copy of the constants the calculator was built with.
func (c *Calculator) Config() Config {
	return c.cfg.WithDefaults()
}

// ActivityFactor resolves a named activity level.
func (c *Calculator) ActivityFactor(level string) (float64, bool) {
	f, ok := c.cfg.ActivityFactors[level]
	return f, ok
}

// MinCalories is the absolute daily floor for sex.
func (c *Calculator) MinCalories(sex Sex) float64 {
	if sex == SexMale {
		return c.cfg.MinCaloriesMale
	}
	return c.cfg.MinCaloriesFemale
}
