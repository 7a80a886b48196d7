// Package workshop обслуживает регистрацию автомастерских.
//
// Активная мастерская — самостоятельный источник полного платного доступа,
// поэтому после регистрации кэшированный статус пользователя сбрасывается.
package workshop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// Store описывает методы хранилища мастерских.
type Store interface {
	CreateWorkshop(ctx context.Context, workshop models.Workshop) (string, error)
	GetWorkshopByUserUID(ctx context.Context, userUID string) (*models.Workshop, error)
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

// Register создаёт мастерскую пользователя и возвращает её идентификатор.
func (s *Service) Register(ctx context.Context, userUID string, req models.DummyWorkshop) (string, error) {
	const op = "services.workshop.Register"

	id, err := s.store.CreateWorkshop(ctx, models.Workshop{
		UserUID:  userUID,
		Name:     req.Name,
		IsActive: true,
		Active:   true,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = s.entitlement.Invalidate(userUID); err != nil {
		s.log.Warn("failed to invalidate entitlement cache", sl.Err(err),
			slog.String("user_uid", userUID))
	}

	s.log.Info("workshop registered",
		slog.String("workshop_id", id),
		slog.String("user_uid", userUID))
	return id, nil
}

// Get возвращает мастерскую пользователя.
func (s *Service) Get(ctx context.Context, userUID string) (*models.Workshop, error) {
	const op = "services.workshop.Get"

	workshop, err := s.store.GetWorkshopByUserUID(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return workshop, nil
}
