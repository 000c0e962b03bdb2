package sendplansummary

import (
	"bulkbuddy-workers/internal/models"
	"bulkbuddy-workers/internal/nutrition"
)

type Input struct {
	UserID         string                     `json:"userId"`
	MealPlanID     string                     `json:"mealPlanId,omitempty"`
	PlanName       string                     `json:"name,omitempty"`
	TargetCalories float64                    `json:"targetCalories"`
	Items          []models.MealPlanItem      `json:"items,omitempty"`
	Nutrition      nutrition.NutritionSummary `json:"nutrition"`
	// SendSMS also texts the short summary when the user has a phone number.
	SendSMS bool `json:"sendSms,omitempty"`
}

type Output struct {
	Status        string                `json:"status"` // "sent", "failed", "disabled"
	Notifications []models.Notification `json:"notifications"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
