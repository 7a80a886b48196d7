package models

import "time"

// Виды напоминаний об истечении доступа.
const (
	NoticeKindSubscription = "subscription"
	NoticeKindTrial        = "trial"
)

// ExpiryNotice — сообщение очереди уведомлений о скором истечении доступа.
type ExpiryNotice struct {
	Kind     string    `json:"kind"` // subscription или trial
	Email    string    `json:"email"`
	Username string    `json:"username"`
	PlanType string    `json:"plan_type,omitempty"`
	EndDate  time.Time `json:"end_date"`
}
