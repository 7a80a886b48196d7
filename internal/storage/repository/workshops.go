package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

// CreateWorkshop сохраняет новую мастерскую и возвращает её ID.
func (s *Storage) CreateWorkshop(ctx context.Context, workshop models.Workshop) (string, error) {
	const op = "storage.CreateWorkshop"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO workshops (user_uid, name, plan, is_active, active, trial_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		workshop.UserUID, workshop.Name, workshop.Plan,
		workshop.IsActive, workshop.Active, workshop.TrialEndDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetWorkshopByUserUID возвращает мастерскую пользователя, если она зарегистрирована.
func (s *Storage) GetWorkshopByUserUID(ctx context.Context, userUID string) (*models.Workshop, error) {
	const op = "storage.GetWorkshopByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, plan, is_active, active, trial_end_date, created_at
			  FROM workshops
			  WHERE user_uid = $1
			  LIMIT 1`
	w := &models.Workshop{}
	var trialEnd sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&w.ID, &w.UserUID, &w.Name, &w.Plan,
		&w.IsActive, &w.Active, &trialEnd, &w.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trialEnd.Valid {
		w.TrialEndDate = &trialEnd.Time
	}
	return w, nil
}
