// Package entitlement вычисляет статус доступа пользователя.
//
// Статус всегда производный: он собирается из профиля, мастерской и подписок
// упорядоченным списком стратегий, где срабатывает первое совпадение.
// Хранимым флагам "is_premium" сервис не доверяет; допускается только
// краткоживущий кеш вычисленного результата с явной инвалидацией писателями.
package entitlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oficinacloud/oficina-backend/internal/config"
	"github.com/oficinacloud/oficina-backend/internal/lib/days"
	"github.com/oficinacloud/oficina-backend/internal/lib/retry"
	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// Store определяет методы чтения, необходимые для вычисления доступа.
// Сервис по отношению к этим данным только читатель.
type Store interface {
	// GetProfileByUserUID возвращает профиль пользователя.
	GetProfileByUserUID(ctx context.Context, userUID string) (*models.Profile, error)
	// GetWorkshopByUserUID возвращает мастерскую пользователя.
	GetWorkshopByUserUID(ctx context.Context, userUID string) (*models.Workshop, error)
	// FindLatestRelevantSubscription возвращает свежайшую подписку со статусом active или trialing.
	FindLatestRelevantSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Cache описывает методы для кэширования вычисленного статуса.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует вычисление статуса доступа с кешированием и повторами.
type Service struct {
	store Store
	cache Cache
	log   *slog.Logger

	cacheTTL     time.Duration
	storeTimeout time.Duration
	storeRetries uint64

	now func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(store Store, cache Cache, log *slog.Logger, cfg config.Entitlement) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		log:          log,
		cacheTTL:     cfg.CacheTTL,
		storeTimeout: cfg.StoreTimeout,
		storeRetries: cfg.StoreRetries,
		now:          time.Now,
	}
}

// CacheKey возвращает ключ кеша статуса для пользователя.
// Писатели состояния подписки инвалидируют именно этот ключ.
func CacheKey(userUID string) string {
	return fmt.Sprintf("entitlement:%s", userUID)
}

// Resolve вычисляет статус доступа пользователя. Ошибки чтения хранилища
// деградируют до ограниченного доступа и никогда не поднимаются наружу.
func (s *Service) Resolve(ctx context.Context, userUID string) *models.EntitlementStatus {
	cacheKey := CacheKey(userUID)

	var cached models.EntitlementStatus
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read entitlement cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached
	}

	status := s.resolve(ctx, userUID)

	if err := s.cache.Set(cacheKey, status, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache entitlement", slog.String("key", cacheKey), sl.Err(err))
	}
	return status
}

// Invalidate сбрасывает закешированный статус пользователя.
// Вызывается после записи нового состояния подписки или мастерской,
// чтобы следующая проверка не прочитала устаревший результат.
func (s *Service) Invalidate(userUID string) error {
	return s.cache.Invalidate(CacheKey(userUID))
}

// HasFeature проверяет токен возможности для пользователя.
func (s *Service) HasFeature(ctx context.Context, userUID, token string) bool {
	return s.Resolve(ctx, userUID).HasFeature(token)
}

// strategy — одна ступень каскада. Возвращает nil-статус, если ступень
// не дала решения и нужно перейти к следующей.
type strategy struct {
	name string
	fn   func(ctx context.Context, userUID string, profile *models.Profile) (*models.EntitlementStatus, error)
}

func (s *Service) resolve(ctx context.Context, userUID string) *models.EntitlementStatus {
	profile, err := s.getProfile(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to load profile, degrading to restricted access",
			slog.String("user_uid", userUID), sl.Err(err))
	}

	strategies := []strategy{
		{name: "admin-override", fn: s.resolveAdmin},
		{name: "workshop", fn: s.resolveWorkshop},
		{name: "subscription", fn: s.resolveSubscription},
		{name: "profile-trial", fn: s.resolveProfileTrial},
	}

	for _, st := range strategies {
		status, err := st.fn(ctx, userUID, profile)
		if err != nil {
			s.log.Warn("entitlement strategy failed",
				slog.String("strategy", st.name), slog.String("user_uid", userUID), sl.Err(err))
			continue
		}
		if status != nil {
			return status
		}
	}

	return noEntitlement(profile)
}

// resolveAdmin: администраторы никогда не блокируются биллингом.
func (s *Service) resolveAdmin(_ context.Context, _ string, profile *models.Profile) (*models.EntitlementStatus, error) {
	if profile == nil || !models.IsAdminRole(profile.Role) {
		return nil, nil
	}
	return &models.EntitlementStatus{
		IsActive:          true,
		PlanTier:          models.TierPremium,
		PlanName:          "Premium",
		Permissions:       models.AdminPermissions(),
		DaysRemaining:     models.UnboundedDays,
		Source:            models.SourceAdminOverride,
		IsAdmin:           true,
		CanAccessFeatures: true,
	}, nil
}

// resolveWorkshop: зарегистрированная активная мастерская даёт полный доступ
// независимо от биллинга (легаси-модель доверия).
func (s *Service) resolveWorkshop(ctx context.Context, userUID string, _ *models.Profile) (*models.EntitlementStatus, error) {
	workshop, err := s.getWorkshop(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if workshop == nil || !workshop.Enabled() {
		return nil, nil
	}
	return &models.EntitlementStatus{
		IsActive:          true,
		PlanTier:          models.TierPremium,
		PlanName:          "Premium",
		Permissions:       models.PermissionsForTier(models.TierPremium),
		DaysRemaining:     models.UnboundedDays,
		Source:            models.SourceWorkshop,
		CanAccessFeatures: true,
	}, nil
}

// resolveSubscription: авторитетна свежайшая подписка со статусом active или
// trialing. Истёкшая подписка сразу даёт "нет доступа": легаси-поля пробного
// периода профиля при существующей подписке не рассматриваются.
func (s *Service) resolveSubscription(ctx context.Context, userUID string, profile *models.Profile) (*models.EntitlementStatus, error) {
	sub, err := s.getRelevantSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}

	tier := tierFromPlanType(sub.PlanType)

	var expiration *time.Time
	if sub.Status == models.StatusTrialing && sub.TrialEndDate != nil {
		expiration = sub.TrialEndDate
	} else if sub.EndDate != nil {
		expiration = sub.EndDate
	}

	if expiration == nil {
		// Дата окончания не записана: подписка считается бессрочной.
		return activeStatus(tier, models.UnboundedDays, models.SourceSubscriptions, profile), nil
	}

	now := s.now()
	if expiration.After(now) {
		return activeStatus(tier, days.Until(now, *expiration), models.SourceSubscriptions, profile), nil
	}

	return noEntitlement(profile), nil
}

// resolveProfileTrial: легаси-пробный период из профиля. Ступень достижима
// только когда у пользователя вообще нет подписок со статусом active/trialing.
func (s *Service) resolveProfileTrial(_ context.Context, _ string, profile *models.Profile) (*models.EntitlementStatus, error) {
	if profile == nil || !profile.IsActive || profile.TrialEndDate == nil {
		return nil, nil
	}

	now := s.now()
	if !profile.TrialEndDate.After(now) {
		return nil, nil
	}

	return &models.EntitlementStatus{
		IsActive:          true,
		PlanTier:          models.TierPremium,
		PlanName:          "Teste grátis",
		Permissions:       models.PermissionsForTier(models.TierPremium),
		DaysRemaining:     days.Until(now, *profile.TrialEndDate),
		Source:            models.SourceProfile,
		CanAccessFeatures: true,
	}, nil
}

func activeStatus(tier models.PlanTier, daysRemaining int, source string, profile *models.Profile) *models.EntitlementStatus {
	return &models.EntitlementStatus{
		IsActive:          true,
		PlanTier:          tier,
		PlanName:          planNameForTier(tier),
		Permissions:       models.PermissionsForTier(tier),
		DaysRemaining:     daysRemaining,
		Source:            source,
		IsAdmin:           profile != nil && models.IsAdminRole(profile.Role),
		CanAccessFeatures: true,
	}
}

func noEntitlement(profile *models.Profile) *models.EntitlementStatus {
	isAdmin := profile != nil && models.IsAdminRole(profile.Role)
	return &models.EntitlementStatus{
		IsActive:          false,
		PlanTier:          models.TierFree,
		PlanName:          planNameForTier(models.TierFree),
		Permissions:       models.PermissionsForTier(models.TierFree),
		DaysRemaining:     0,
		Source:            models.SourceNone,
		IsAdmin:           isAdmin,
		CanAccessFeatures: isAdmin,
	}
}

// tierFromPlanType выводит уровень тарифа из составной строки plan_type.
func tierFromPlanType(planType string) models.PlanTier {
	if containsFold(planType, "premium") {
		return models.TierPremium
	}
	return models.TierEssencial
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func planNameForTier(tier models.PlanTier) string {
	switch tier {
	case models.TierPremium:
		return "Premium"
	case models.TierEssencial:
		return "Essencial"
	default:
		return "Gratuito"
	}
}

func (s *Service) getProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	return retry.Do(ctx, s.storeTimeout, s.storeRetries, func(ctx context.Context) (*models.Profile, error) {
		p, err := s.store.GetProfileByUserUID(ctx, userUID)
		return nilOnNoRows(p, err)
	})
}

func (s *Service) getWorkshop(ctx context.Context, userUID string) (*models.Workshop, error) {
	return retry.Do(ctx, s.storeTimeout, s.storeRetries, func(ctx context.Context) (*models.Workshop, error) {
		w, err := s.store.GetWorkshopByUserUID(ctx, userUID)
		return nilOnNoRows(w, err)
	})
}

func (s *Service) getRelevantSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	return retry.Do(ctx, s.storeTimeout, s.storeRetries, func(ctx context.Context) (*models.Subscription, error) {
		sub, err := s.store.FindLatestRelevantSubscription(ctx, userUID)
		return nilOnNoRows(sub, err)
	})
}

// nilOnNoRows превращает "нет строки" в nil-значение без ошибки:
// отсутствие записи — штатный исход каскада, а не сбой хранилища.
func nilOnNoRows[T any](value *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}
