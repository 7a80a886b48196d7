// Package auth реализует регистрацию и вход пользователей.
//
// При регистрации создаются учётная запись и профиль с ролью user и
// семидневным пробным периодом. Вход выдаёт JWT с именем, ролью и UID.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oficinacloud/oficina-backend/internal/lib/jwt"
	"github.com/oficinacloud/oficina-backend/internal/lib/password"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// TrialDays длительность пробного периода, выдаваемого при регистрации.
const TrialDays = 7

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store описывает методы хранилища для регистрации и входа.
type Store interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfileByUserUID(ctx context.Context, userUID string) (*models.Profile, error)
}

type Service struct {
	store Store
	maker jwt.Maker
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		store: store,
		maker: maker,
		log:   log,
		now:   time.Now,
	}
}

// Register создаёт учётную запись и профиль с пробным периодом,
// возвращает UID нового пользователя.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	const op = "services.auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.store.RegisterUser(ctx, models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	trialStart := s.now()
	trialEnd := trialStart.AddDate(0, 0, TrialDays)
	profile := models.Profile{
		UserUID:        uid,
		Email:          req.Email,
		Role:           models.RoleUser,
		Plan:           "trial",
		TrialStartDate: &trialStart,
		TrialEndDate:   &trialEnd,
		IsActive:       true,
	}
	if err = s.store.CreateProfile(ctx, profile); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered",
		slog.String("user_uid", uid),
		slog.String("username", req.Username))
	return uid, nil
}

// Login проверяет пару логин/пароль и возвращает подписанный JWT.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, error) {
	const op = "services.auth.Login"

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err = password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	role := models.RoleUser
	if profile, perr := s.store.GetProfileByUserUID(ctx, user.UID); perr == nil && profile != nil {
		role = profile.Role
	}

	token, err := s.maker.GenerateToken(user.Username, role, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
