// Package subscription реализует административное редактирование подписок.
//
// Наряду с webhook-обработчиками это второй и последний писатель состояния
// подписки; резолвер доступа читает это состояние и никогда не пишет его.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// DateLayout — формат дат в административных запросах.
const DateLayout = "02-01-2006"

// Store описывает методы хранилища подписок.
type Store interface {
	UpsertSubscriptionByUser(ctx context.Context, sub models.Subscription) error
	GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error)
}

// EntitlementInvalidator сбрасывает кэшированный статус доступа пользователя.
type EntitlementInvalidator interface {
	Invalidate(userUID string) error
}

type Service struct {
	store       Store
	entitlement EntitlementInvalidator
	log         *slog.Logger
}

func NewService(store Store, entitlement EntitlementInvalidator, log *slog.Logger) *Service {
	return &Service{
		store:       store,
		entitlement: entitlement,
		log:         log,
	}
}

// AdminUpdate записывает подписку пользователя из административного запроса
// и сбрасывает его кэшированный статус доступа.
func (s *Service) AdminUpdate(ctx context.Context, userUID string, req models.DummySubscription) error {
	const op = "services.subscription.AdminUpdate"

	startDate, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		return fmt.Errorf("%s: invalid start_date: %w", op, err)
	}

	sub := models.Subscription{
		UserUID:   userUID,
		PlanType:  req.PlanType,
		Status:    req.Status,
		StartDate: startDate,
	}
	if req.EndDate != "" {
		endDate, err := time.Parse(DateLayout, req.EndDate)
		if err != nil {
			return fmt.Errorf("%s: invalid end_date: %w", op, err)
		}
		sub.EndDate = &endDate
	}

	if err = s.store.UpsertSubscriptionByUser(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.entitlement.Invalidate(userUID); err != nil {
		s.log.Warn("failed to invalidate entitlement cache", sl.Err(err),
			slog.String("user_uid", userUID))
	}

	s.log.Info("subscription updated by admin",
		slog.String("user_uid", userUID),
		slog.String("status", req.Status),
		slog.String("plan_type", req.PlanType))
	return nil
}

// Current возвращает самую свежую подписку пользователя независимо от статуса.
func (s *Service) Current(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "services.subscription.Current"

	sub, err := s.store.GetSubscriptionByUserUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}
