// Package notificationscheduler периодически находит подписки и пробные
// периоды, истекающие завтра, и публикует напоминания в очередь уведомлений.
package notificationscheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
	"github.com/oficinacloud/oficina-backend/internal/rabbitmq"
)

// Store описывает выборки истекающего доступа.
type Store interface {
	FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.ExpiringSubscription, error)
	FindTrialsExpiringTomorrow(ctx context.Context) ([]*models.Profile, error)
}

// Publisher публикует напоминание в очередь уведомлений.
type Publisher interface {
	Publish(notice models.ExpiryNotice) error
}

// AMQPPublisher публикует напоминания в exchange уведомлений RabbitMQ.
type AMQPPublisher struct {
	Channel *amqp.Channel
}

func (p *AMQPPublisher) Publish(notice models.ExpiryNotice) error {
	return rabbitmq.PublishMessage(p.Channel, rabbitmq.NotificationsExchange,
		rabbitmq.ExpiringRoutingKey, notice)
}

type SchedulerService struct {
	store     Store
	publisher Publisher
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(store Store, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Run запускает цикл поиска истекающего доступа с заданным интервалом
// и работает до отмены контекста.
func (s *SchedulerService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce выполняет один проход: собирает истекающие подписки и пробные
// периоды и публикует напоминание по каждому. Ошибки отдельных публикаций
// логируются и не прерывают проход.
func (s *SchedulerService) RunOnce(ctx context.Context) {
	s.log.Info("starting search for expiring access")

	subs, err := s.store.FindSubscriptionsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring subscriptions", sl.Err(err))
	}
	for _, sub := range subs {
		notice := models.ExpiryNotice{
			Kind:     models.NoticeKindSubscription,
			Email:    sub.Email,
			Username: sub.Username,
			PlanType: sub.PlanType,
			EndDate:  sub.EndDate,
		}
		if err = s.publisher.Publish(notice); err != nil {
			s.log.Error("failed to publish expiry notice", sl.Err(err),
				slog.String("email", sub.Email))
		}
	}

	trials, err := s.store.FindTrialsExpiringTomorrow(ctx)
	if err != nil {
		s.log.Error("failed to find expiring trials", sl.Err(err))
	}
	for _, profile := range trials {
		if profile.TrialEndDate == nil {
			continue
		}
		notice := models.ExpiryNotice{
			Kind:    models.NoticeKindTrial,
			Email:   profile.Email,
			EndDate: *profile.TrialEndDate,
		}
		if err = s.publisher.Publish(notice); err != nil {
			s.log.Error("failed to publish expiry notice", sl.Err(err),
				slog.String("email", profile.Email))
		}
	}
}
