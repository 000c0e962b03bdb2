// internal/nutrition/bmr.go
package nutrition

// BMR returns the basal metabolic rate in kcal/day. Katch-McArdle is used
// when body fat is known, the revised Harris-Benedict equation otherwise.
func (c *Calculator) BMR(p PersonProfile) float64 {
	if p.BodyFatPercent != nil {
		leanMass := p.WeightKg * (1 - *p.BodyFatPercent/100)
		return 370 + 21.6*leanMass
	}

	age := float64(p.Age)
	if p.Sex == SexMale {
		return 88.362 + 13.397*p.WeightKg + 4.799*p.HeightCm - 5.677*age
	}
	return 447.593 + 9.247*p.WeightKg + 3.098*p.HeightCm - 4.330*age
}

// EstimateMaintenanceCalories returns BMR × activity factor (TDEE).
func (c *Calculator) EstimateMaintenanceCalories(p PersonProfile) float64 {
	return c.BMR(p) * p.ActivityFactor
}

// EstimateMaintenanceCalories evaluates p with the default constants.
func EstimateMaintenanceCalories(p PersonProfile) float64 {
	return New(DefaultConfig()).EstimateMaintenanceCalories(p)
}
