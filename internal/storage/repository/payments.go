package repository

import (
	"context"
	"fmt"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

// CreatePaymentEvent добавляет неизменяемую запись аудита платёжного события.
func (s *Storage) CreatePaymentEvent(ctx context.Context, event models.PaymentEvent) error {
	const op = "storage.CreatePaymentEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_events (id, provider, user_uid, event, status,
			      amount, transaction_id, payload)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		event.ID, event.Provider, event.UserUID, event.Event, event.Status,
		event.Amount, event.TransactionID, []byte(event.Payload))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPaymentEventsByUser возвращает записи аудита пользователя, новые первыми.
func (s *Storage) ListPaymentEventsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentEvent, error) {
	const op = "storage.ListPaymentEventsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, provider, user_uid, event, status, amount, transaction_id,
			      payload, created_at
			  FROM payment_events
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentEvent
	for rows.Next() {
		var item models.PaymentEvent
		var payload []byte
		if err = rows.Scan(&item.ID, &item.Provider, &item.UserUID, &item.Event,
			&item.Status, &item.Amount, &item.TransactionID, &payload, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Payload = payload
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
