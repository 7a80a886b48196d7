package models

import (
	"strings"
	"time"
)

// Статусы подписки. Неизвестные события платёжного провайдера
// отображаются в StatusExpired.
const (
	StatusActive    = "active"
	StatusTrialing  = "trialing"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Subscription представляет запись подписки пользователя. Авторитетна только
// самая свежая запись; строки никогда не удаляются, а замещаются новыми.
// EndDate и TrialEndDate могут быть nil — отсутствие даты означает
// бессрочную подписку.
type Subscription struct {
	ID           int        // Идентификатор записи
	UserUID      string     // Идентификатор пользователя-владельца
	PlanType     string     // Составная строка тарифа, например "premium_anual"
	Status       string     // active, trialing, cancelled или expired
	StartDate    time.Time  // Дата начала подписки
	EndDate      *time.Time // Дата окончания оплаченного периода
	TrialEndDate *time.Time // Дата окончания пробного периода
	CreatedAt    time.Time  // Дата создания записи
}

// IsAnnual сообщает, относится ли тариф к годовому циклу оплаты.
func IsAnnual(planType string) bool {
	return strings.Contains(strings.ToLower(planType), "anual")
}

// ExpiringSubscription — сведения об истекающей подписке для письма-напоминания.
type ExpiringSubscription struct {
	Email    string
	Username string
	PlanType string
	EndDate  time.Time
}

// DummySubscription используется для приёма данных подписки из JSON-запроса
// административного инструмента редактирования.
type DummySubscription struct {
	PlanType  string `json:"plan_type" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=active trialing cancelled expired"`
	StartDate string `json:"start_date" validate:"required"` // Дата начала в формате 02-01-2006
	EndDate   string `json:"end_date,omitempty"`             // Дата окончания в формате 02-01-2006, опционально
}
