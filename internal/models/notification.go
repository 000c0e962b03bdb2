// internal/models/notification.go
package models

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Channel   string `json:"channel"` // "email", "sms"
	Status    string `json:"status"`  // "sent", "failed", "disabled"
	MessageID string `json:"messageId,omitempty"`
	SentAt    string `json:"sentAt,omitempty"`
}
