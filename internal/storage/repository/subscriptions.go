package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

const subscriptionColumns = `id, user_uid, plan_type, status, start_date,
			      end_date, trial_end_date, created_at`

// FindLatestRelevantSubscription возвращает самую свежую подписку пользователя
// со статусом active или trialing. Именно она авторитетна при вычислении доступа.
func (s *Storage) FindLatestRelevantSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.FindLatestRelevantSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			    AND status IN ($2, $3)
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID, models.StatusActive, models.StatusTrialing)
	return scanSubscription(row, op)
}

// GetSubscriptionByUserUID возвращает самую свежую подписку пользователя
// независимо от статуса.
func (s *Storage) GetSubscriptionByUserUID(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	return scanSubscription(row, op)
}

// UpsertSubscriptionByUser вставляет или обновляет единственную строку подписки
// пользователя. Единственные писатели — webhook-обработчики платёжных
// провайдеров и административный инструмент редактирования.
func (s *Storage) UpsertSubscriptionByUser(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscriptionByUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_type, status, start_date,
			      end_date, trial_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET plan_type = EXCLUDED.plan_type,
			      status = EXCLUDED.status,
			      start_date = EXCLUDED.start_date,
			      end_date = EXCLUDED.end_date,
			      trial_end_date = EXCLUDED.trial_end_date,
			      created_at = now()`
	_, err := s.DB.ExecContext(ctx, query,
		sub.UserUID, sub.PlanType, sub.Status, sub.StartDate, sub.EndDate, sub.TrialEndDate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindSubscriptionsExpiringTomorrow находит оплаченные подписки, срок которых
// истекает завтра, вместе с email владельца. Используется планировщиком уведомлений.
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.ExpiringSubscription, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.email, u.username, s.plan_type, s.end_date
			  FROM subscriptions s
			  JOIN users u ON s.user_uid = u.uid
			  WHERE s.status = $1
			    AND s.end_date::DATE = CURRENT_DATE + INTERVAL '1 day'`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringSubscription
	for rows.Next() {
		var item models.ExpiringSubscription
		if err = rows.Scan(&item.Email, &item.Username, &item.PlanType, &item.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSubscription(row rowScanner, op string) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var endDate, trialEnd sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanType, &sub.Status,
		&sub.StartDate, &endDate, &trialEnd, &sub.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	if trialEnd.Valid {
		sub.TrialEndDate = &trialEnd.Time
	}
	return sub, nil
}
