package auth

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oficinacloud/oficina-backend/internal/lib/jwt"
	"github.com/oficinacloud/oficina-backend/internal/lib/password"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

type StoreMock struct{ mock.Mock }

func (m *StoreMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *StoreMock) CreateProfile(ctx context.Context, profile models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *StoreMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *StoreMock) GetProfileByUserUID(ctx context.Context, userUID string) (*models.Profile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func newTestService(store *StoreMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	maker := jwt.NewMaker("test-secret", time.Hour)
	return NewService(store, maker, log)
}

func TestRegister_CreatesUserAndTrialProfile(t *testing.T) {
	store := new(StoreMock)
	store.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "dono@oficina.com.br" && u.Username == "dono" && u.PasswordHash != ""
	})).Return("uid-new", nil)
	store.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		if p.UserUID != "uid-new" || p.Role != models.RoleUser || !p.IsActive {
			return false
		}
		if p.TrialStartDate == nil || p.TrialEndDate == nil {
			return false
		}
		return p.TrialEndDate.Sub(*p.TrialStartDate) == TrialDays*24*time.Hour
	})).Return(nil)

	svc := newTestService(store)
	uid, err := svc.Register(context.Background(), models.DummyRegister{
		Email:    "dono@oficina.com.br",
		Username: "dono",
		Password: "strongpassword",
	})

	require.NoError(t, err)
	assert.Equal(t, "uid-new", uid)
	store.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	hash, err := password.GetHash("strongpassword")
	require.NoError(t, err)

	store := new(StoreMock)
	store.On("GetUserByUsername", mock.Anything, "dono").
		Return(&models.User{UID: "uid-1", Username: "dono", PasswordHash: hash}, nil)
	store.On("GetProfileByUserUID", mock.Anything, "uid-1").
		Return(&models.Profile{UserUID: "uid-1", Role: models.RoleAdmin}, nil)

	svc := newTestService(store)
	token, err := svc.Login(context.Background(), models.DummyLogin{
		Username: "dono",
		Password: "strongpassword",
	})
	require.NoError(t, err)

	claims, err := jwt.NewMaker("test-secret", time.Hour).ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dono", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "uid-1", claims.UserUID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := password.GetHash("strongpassword")
	require.NoError(t, err)

	store := new(StoreMock)
	store.On("GetUserByUsername", mock.Anything, "dono").
		Return(&models.User{UID: "uid-1", Username: "dono", PasswordHash: hash}, nil)

	svc := newTestService(store)
	_, err = svc.Login(context.Background(), models.DummyLogin{
		Username: "dono",
		Password: "wrongpassword",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	store := new(StoreMock)
	store.On("GetUserByUsername", mock.Anything, "ghost").
		Return(nil, fmt.Errorf("storage.GetUserByUsername: %w", sql.ErrNoRows))

	svc := newTestService(store)
	_, err := svc.Login(context.Background(), models.DummyLogin{
		Username: "ghost",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_MissingProfileDefaultsToUserRole(t *testing.T) {
	hash, err := password.GetHash("strongpassword")
	require.NoError(t, err)

	store := new(StoreMock)
	store.On("GetUserByUsername", mock.Anything, "dono").
		Return(&models.User{UID: "uid-1", Username: "dono", PasswordHash: hash}, nil)
	store.On("GetProfileByUserUID", mock.Anything, "uid-1").
		Return(nil, fmt.Errorf("storage.GetProfileByUserUID: %w", sql.ErrNoRows))

	svc := newTestService(store)
	token, err := svc.Login(context.Background(), models.DummyLogin{
		Username: "dono",
		Password: "strongpassword",
	})
	require.NoError(t, err)

	claims, err := jwt.NewMaker("test-secret", time.Hour).ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, claims.Role)
}
