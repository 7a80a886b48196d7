package plan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func (m *StoreMock) UpsertPlan(ctx context.Context, plan models.Plan) (int, error) {
	args := m.Called(ctx, plan)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newTestService(store *StoreMock, cache *CacheMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewService(store, cache, log, time.Minute)
}

func TestListActive_CacheMiss(t *testing.T) {
	store := new(StoreMock)
	cache := new(CacheMock)

	plans := []*models.Plan{
		{ID: 1, Name: "Essencial", PlanType: "essencial_mensal", Price: 49.90},
		{ID: 2, Name: "Premium", PlanType: "premium_mensal", Price: 99.90},
	}
	cache.On("Get", cacheKey, mock.Anything).Return(false, nil)
	store.On("ListActivePlans", mock.Anything).Return(plans, nil)
	cache.On("Set", cacheKey, mock.Anything, time.Minute).Return(nil)

	svc := newTestService(store, cache)
	got, err := svc.ListActive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, plans, got)
	cache.AssertExpectations(t)
}

func TestListActive_CacheHit(t *testing.T) {
	store := new(StoreMock)
	cache := new(CacheMock)

	cached := []*models.Plan{{ID: 1, Name: "Premium", PlanType: "premium_anual"}}
	cache.On("Get", cacheKey, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(1).(*[]*models.Plan)
			*out = cached
		}).
		Return(true, nil)

	svc := newTestService(store, cache)
	got, err := svc.ListActive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	store.AssertNotCalled(t, "ListActivePlans", mock.Anything)
}

func TestListActive_StoreError(t *testing.T) {
	store := new(StoreMock)
	cache := new(CacheMock)

	cache.On("Get", cacheKey, mock.Anything).Return(false, nil)
	store.On("ListActivePlans", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := newTestService(store, cache)
	_, err := svc.ListActive(context.Background())
	require.Error(t, err)
}

func TestUpsert_InvalidatesCache(t *testing.T) {
	store := new(StoreMock)
	cache := new(CacheMock)

	store.On("UpsertPlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
		return p.PlanType == "premium_anual" && p.Price == 999.90
	})).Return(7, nil)
	cache.On("Invalidate", cacheKey).Return(nil).Once()

	svc := newTestService(store, cache)
	id, err := svc.Upsert(context.Background(), models.DummyPlan{
		Name:     "Premium Anual",
		PlanType: "premium_anual",
		Price:    999.90,
		Currency: "BRL",
		IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, id)
	cache.AssertExpectations(t)
}
