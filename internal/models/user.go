package models

// User is a row of the users table. Physical attributes are nullable until
// the user completes onboarding.
type User struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Age            *int     `json:"age,omitempty"`
	WeightKg       *float64 `json:"weightKg,omitempty"`
	HeightCm       *float64 `json:"heightCm,omitempty"`
	Sex            string   `json:"sex,omitempty"`
	BodyFatPercent *float64 `json:"bodyFatPercent,omitempty"`
	ActivityLevel  string   `json:"activityLevel,omitempty"`
}

// HasProfile reports whether every attribute the calorie engine needs is set.
func (u *User) HasProfile() bool {
	return u.Age != nil && u.WeightKg != nil && u.HeightCm != nil && u.Sex != "" && u.ActivityLevel != ""
}
