package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

// CreateProfile сохраняет профиль пользователя.
func (s *Storage) CreateProfile(ctx context.Context, profile models.Profile) error {
	const op = "storage.CreateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (user_uid, email, role, plan, trial_start_date,
			      trial_end_date, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		profile.UserUID, profile.Email, profile.Role, profile.Plan,
		profile.TrialStartDate, profile.TrialEndDate, profile.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetProfileByUserUID возвращает профиль пользователя по его UID.
func (s *Storage) GetProfileByUserUID(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfileByUserUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, email, role, plan, trial_start_date, trial_end_date, is_active
			  FROM profiles
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)
	return scanProfile(row, op)
}

// FindProfileByEmail ищет профиль по email плательщика.
// Используется webhook-обработчиками до обращения к общему каталогу.
func (s *Storage) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const op = "storage.FindProfileByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, email, role, plan, trial_start_date, trial_end_date, is_active
			  FROM profiles
			  WHERE lower(email) = lower($1)
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, email)
	return scanProfile(row, op)
}

// FindTrialsExpiringTomorrow находит активные профили, пробный период которых
// истекает завтра. Используется планировщиком уведомлений.
func (s *Storage) FindTrialsExpiringTomorrow(ctx context.Context) ([]*models.Profile, error) {
	const op = "storage.FindTrialsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, email, role, plan, trial_start_date, trial_end_date, is_active
			  FROM profiles
			  WHERE is_active = true
			    AND trial_end_date::DATE = CURRENT_DATE + INTERVAL '1 day'`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows, op)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner, op string) (*models.Profile, error) {
	p := &models.Profile{}
	var trialStart, trialEnd sql.NullTime
	if err := row.Scan(&p.UserUID, &p.Email, &p.Role, &p.Plan,
		&trialStart, &trialEnd, &p.IsActive); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if trialStart.Valid {
		p.TrialStartDate = &trialStart.Time
	}
	if trialEnd.Valid {
		p.TrialEndDate = &trialEnd.Time
	}
	return p, nil
}
