package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oficinacloud/oficina-backend/internal/config"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.EntitlementStatus{
		IsActive:          true,
		PlanTier:          models.TierPremium,
		PlanName:          "Premium Anual",
		Permissions:       models.PermissionsForTier(models.TierPremium),
		DaysRemaining:     120,
		Source:            models.SourceSubscriptions,
		CanAccessFeatures: true,
	}
	err := cache.Set("entitlement:user-1", expected, time.Minute)
	require.NoError(t, err)

	var actual models.EntitlementStatus
	found, err := cache.Get("entitlement:user-1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.EntitlementStatus
	found, err := cache.Get("entitlement:no-such-user", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("entitlement:user-2", models.EntitlementStatus{IsActive: true}, time.Minute))
	require.NoError(t, cache.Invalidate("entitlement:user-2"))

	var out models.EntitlementStatus
	found, err := cache.Get("entitlement:user-2", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
