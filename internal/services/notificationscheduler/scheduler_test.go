package notificationscheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oficinacloud/oficina-backend/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) FindSubscriptionsExpiringTomorrow(ctx context.Context) ([]*models.ExpiringSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpiringSubscription), args.Error(1)
}

func (m *StoreMock) FindTrialsExpiringTomorrow(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
	published []models.ExpiryNotice
}

func (m *PublisherMock) Publish(notice models.ExpiryNotice) error {
	m.published = append(m.published, notice)
	return m.Called(notice).Error(0)
}

func newTestService(store *StoreMock, pub *PublisherMock) *SchedulerService {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewSchedulerService(store, pub, log)
}

func TestRunOnce_PublishesSubscriptionsAndTrials(t *testing.T) {
	store := new(StoreMock)
	pub := new(PublisherMock)

	endDate := time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC)
	store.On("FindSubscriptionsExpiringTomorrow", mock.Anything).
		Return([]*models.ExpiringSubscription{
			{Email: "a@oficina.com.br", Username: "a", PlanType: "premium_mensal", EndDate: endDate},
		}, nil)
	store.On("FindTrialsExpiringTomorrow", mock.Anything).
		Return([]*models.Profile{
			{UserUID: "uid-2", Email: "b@oficina.com.br", TrialEndDate: &endDate},
		}, nil)
	pub.On("Publish", mock.Anything).Return(nil)

	svc := newTestService(store, pub)
	svc.RunOnce(context.Background())

	assert.Len(t, pub.published, 2)
	assert.Equal(t, models.NoticeKindSubscription, pub.published[0].Kind)
	assert.Equal(t, "premium_mensal", pub.published[0].PlanType)
	assert.Equal(t, models.NoticeKindTrial, pub.published[1].Kind)
	assert.Equal(t, "b@oficina.com.br", pub.published[1].Email)
}

func TestRunOnce_StoreErrorDoesNotAbortTrialPass(t *testing.T) {
	store := new(StoreMock)
	pub := new(PublisherMock)

	endDate := time.Date(2026, 5, 21, 0, 0, 0, 0, time.UTC)
	store.On("FindSubscriptionsExpiringTomorrow", mock.Anything).
		Return(nil, errors.New("connection refused"))
	store.On("FindTrialsExpiringTomorrow", mock.Anything).
		Return([]*models.Profile{
			{UserUID: "uid-2", Email: "b@oficina.com.br", TrialEndDate: &endDate},
		}, nil)
	pub.On("Publish", mock.Anything).Return(nil)

	svc := newTestService(store, pub)
	svc.RunOnce(context.Background())

	assert.Len(t, pub.published, 1)
	assert.Equal(t, models.NoticeKindTrial, pub.published[0].Kind)
}

func TestRunOnce_SkipsTrialWithoutEndDate(t *testing.T) {
	store := new(StoreMock)
	pub := new(PublisherMock)

	store.On("FindSubscriptionsExpiringTomorrow", mock.Anything).
		Return([]*models.ExpiringSubscription{}, nil)
	store.On("FindTrialsExpiringTomorrow", mock.Anything).
		Return([]*models.Profile{{UserUID: "uid-1", Email: "x@oficina.com.br"}}, nil)

	svc := newTestService(store, pub)
	svc.RunOnce(context.Background())

	assert.Empty(t, pub.published)
}
