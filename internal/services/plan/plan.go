// Package plan обслуживает каталог тарифов: витрину для клиентов
// и редактирование позиций администратором.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// cacheKey — ключ кэша витрины активных тарифов.
const cacheKey = "plans:active"

// Store описывает методы хранилища каталога тарифов.
type Store interface {
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
	UpsertPlan(ctx context.Context, plan models.Plan) (int, error)
}

// Cache описывает кэш витрины.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

type Service struct {
	store    Store
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

func NewService(store Store, cache Cache, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// ListActive возвращает активные тарифы для витрины, используя кэш.
func (s *Service) ListActive(ctx context.Context) ([]*models.Plan, error) {
	const op = "services.plan.ListActive"

	var cached []*models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("plan catalog cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.store.ListActivePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.Set(cacheKey, plans, s.cacheTTL); err != nil {
		s.log.Warn("plan catalog cache write failed", sl.Err(err))
	}
	return plans, nil
}

// Upsert создаёт или обновляет позицию каталога и сбрасывает кэш витрины.
func (s *Service) Upsert(ctx context.Context, req models.DummyPlan) (int, error) {
	const op = "services.plan.Upsert"

	id, err := s.store.UpsertPlan(ctx, models.Plan{
		Name:         req.Name,
		PlanType:     req.PlanType,
		Price:        req.Price,
		Currency:     req.Currency,
		Features:     req.Features,
		CheckoutURL:  req.CheckoutURL,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("plan catalog cache invalidation failed", sl.Err(err))
	}

	s.log.Info("plan catalog updated",
		slog.String("plan_type", req.PlanType),
		slog.Int("id", id))
	return id, nil
}
