package repository

import (
	"context"
	"fmt"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

// ListActivePlans возвращает активные позиции каталога тарифов
// в порядке отображения на витрине.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, plan_type, price, currency, features, checkout_url,
			      is_active, display_order, created_at
			  FROM plans
			  WHERE is_active = true
			  ORDER BY display_order, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var item models.Plan
		if err = rows.Scan(&item.ID, &item.Name, &item.PlanType, &item.Price,
			&item.Currency, &item.Features, &item.CheckoutURL,
			&item.IsActive, &item.DisplayOrder, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertPlan вставляет или обновляет позицию каталога по plan_type
// и возвращает её ID.
func (s *Storage) UpsertPlan(ctx context.Context, plan models.Plan) (int, error) {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (name, plan_type, price, currency, features,
			      checkout_url, is_active, display_order)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (plan_type) DO UPDATE
			  SET name = EXCLUDED.name,
			      price = EXCLUDED.price,
			      currency = EXCLUDED.currency,
			      features = EXCLUDED.features,
			      checkout_url = EXCLUDED.checkout_url,
			      is_active = EXCLUDED.is_active,
			      display_order = EXCLUDED.display_order
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query,
		plan.Name, plan.PlanType, plan.Price, plan.Currency, plan.Features,
		plan.CheckoutURL, plan.IsActive, plan.DisplayOrder).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}
