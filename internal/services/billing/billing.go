// Package billing обрабатывает события платёжных провайдеров и пишет
// состояние подписок, которое затем читает резолвер доступа.
package billing

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// Store описывает методы хранилища, нужные для записи состояния подписки
// и атрибуции события пользователю.
type Store interface {
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertSubscriptionByUser(ctx context.Context, sub models.Subscription) error
	CreatePaymentEvent(ctx context.Context, event models.PaymentEvent) error
}

// EntitlementInvalidator сбрасывает кэшированный статус доступа пользователя
// после изменения подписки.
type EntitlementInvalidator interface {
	Invalidate(userUID string) error
}

// ProviderEvent — нормализованное платёжное событие, уже извлечённое
// обработчиком конкретного провайдера из его формата.
type ProviderEvent struct {
	Provider          string
	Event             string
	Email             string
	ExternalReference string
	MetadataUserUID   string
	PlanType          string
	Amount            float64
	TransactionID     string
	Payload           json.RawMessage
}

// Outcome — результат обработки события.
type Outcome struct {
	// Handled — false, если событие не удалось привязать к пользователю
	// и оно было проигнорировано.
	Handled bool
	UserUID string
	Status  string
}

type Service struct {
	store       Store
	entitlement EntitlementInvalidator
	log         *slog.Logger
	now         func() time.Time
}

func NewService(store Store, entitlement EntitlementInvalidator, log *slog.Logger) *Service {
	return &Service{
		store:       store,
		entitlement: entitlement,
		log:         log,
		now:         time.Now,
	}
}

// statusRule — пара (подстрока имени события, итоговый статус подписки).
// Таблица проверяется по порядку, первое совпадение выигрывает.
type statusRule struct {
	pattern string
	status  string
}

var eventRules = []statusRule{
	{"PAYMENT_RECEIVED", models.StatusActive},
	{"PAYMENT_CONFIRMED", models.StatusActive},
	{"SUBSCRIPTION_PAYMENT", models.StatusActive},
	{"OVERDUE", models.StatusExpired},
	{"DELINQUENT", models.StatusExpired},
	{"CANCELLED", models.StatusCancelled},
	{"CANCELED", models.StatusCancelled},
	{"REFUNDED", models.StatusCancelled},
	{"DELETED", models.StatusCancelled},
	{"CREATED", models.StatusTrialing},
	{"PENDING", models.StatusTrialing},
}

// MapEventStatus отображает имя события провайдера в статус подписки.
// Сравнение регистронезависимое, по подстроке; нераспознанные события
// считаются expired.
func MapEventStatus(event string) string {
	upper := strings.ToUpper(event)
	for _, rule := range eventRules {
		if strings.Contains(upper, rule.pattern) {
			return rule.status
		}
	}
	return models.StatusExpired
}

// ProcessEvent привязывает событие к пользователю, обновляет его подписку
// и добавляет запись аудита. Событие без пользователя — не ошибка:
// оно фиксируется в аудите и игнорируется.
func (s *Service) ProcessEvent(ctx context.Context, evt ProviderEvent) (Outcome, error) {
	status := MapEventStatus(evt.Event)
	userUID := s.resolveUserUID(ctx, evt)

	s.recordAudit(ctx, evt, userUID, status)

	if userUID == "" {
		s.log.Info("payment event ignored, user not resolved",
			slog.String("provider", evt.Provider),
			slog.String("event", evt.Event))
		return Outcome{Handled: false, Status: status}, nil
	}

	sub := models.Subscription{
		UserUID:   userUID,
		PlanType:  evt.PlanType,
		Status:    status,
		StartDate: s.now(),
	}
	endDate := s.endDateFor(evt.PlanType, status)
	sub.EndDate = &endDate

	if err := s.store.UpsertSubscriptionByUser(ctx, sub); err != nil {
		// Провайдер должен получить 200, иначе начнёт бесконечные ретраи.
		s.log.Error("failed to upsert subscription from payment event", sl.Err(err),
			slog.String("provider", evt.Provider),
			slog.String("user_uid", userUID))
		return Outcome{Handled: true, UserUID: userUID, Status: status}, nil
	}

	if err := s.entitlement.Invalidate(userUID); err != nil {
		s.log.Warn("failed to invalidate entitlement cache", sl.Err(err),
			slog.String("user_uid", userUID))
	}

	s.log.Info("subscription updated from payment event",
		slog.String("provider", evt.Provider),
		slog.String("event", evt.Event),
		slog.String("status", status),
		slog.String("user_uid", userUID))

	return Outcome{Handled: true, UserUID: userUID, Status: status}, nil
}

// resolveUserUID ищет пользователя: внешняя ссылка провайдера, затем UID
// из метаданных, затем email плательщика по профилям и по общему каталогу.
func (s *Service) resolveUserUID(ctx context.Context, evt ProviderEvent) string {
	if evt.ExternalReference != "" {
		return evt.ExternalReference
	}
	if evt.MetadataUserUID != "" {
		return evt.MetadataUserUID
	}
	if evt.Email == "" {
		return ""
	}

	profile, err := s.store.FindProfileByEmail(ctx, evt.Email)
	if err == nil && profile != nil {
		return profile.UserUID
	}

	user, err := s.store.FindUserByEmail(ctx, evt.Email)
	if err == nil && user != nil {
		return user.UID
	}

	return ""
}

// endDateFor возвращает новый срок окончания подписки: год или месяц вперёд
// для оплаченного статуса, иначе немедленное истечение.
func (s *Service) endDateFor(planType, status string) time.Time {
	if status != models.StatusActive {
		return s.now()
	}
	if models.IsAnnual(planType) {
		return s.now().AddDate(1, 0, 0)
	}
	return s.now().AddDate(0, 1, 0)
}

// recordAudit добавляет неизменяемую запись о сыром событии. Сбой аудита
// логируется, но не прерывает обработку.
func (s *Service) recordAudit(ctx context.Context, evt ProviderEvent, userUID, status string) {
	audit := models.PaymentEvent{
		ID:            uuid.New().String(),
		Provider:      evt.Provider,
		UserUID:       userUID,
		Event:         evt.Event,
		Status:        status,
		Amount:        evt.Amount,
		TransactionID: evt.TransactionID,
		Payload:       evt.Payload,
	}
	if err := s.store.CreatePaymentEvent(ctx, audit); err != nil {
		s.log.Error("failed to record payment audit event", sl.Err(err),
			slog.String("provider", evt.Provider),
			slog.String("event", evt.Event))
	}
}
