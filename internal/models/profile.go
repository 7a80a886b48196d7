package models

import "time"

// Роли пользователей. Администраторы никогда не блокируются биллингом.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Profile представляет профиль пользователя: роль, унаследованную текстовую
// метку плана и окно пробного периода. Профиль никогда не удаляется физически,
// только деактивируется через IsActive.
type Profile struct {
	UserUID        string     // Идентификатор пользователя-владельца
	Email          string     // Электронная почта (дублируется для поиска по webhook)
	Role           string     // user, admin или superadmin
	Plan           string     // Текстовая метка плана (легаси-поле)
	TrialStartDate *time.Time // Начало пробного периода
	TrialEndDate   *time.Time // Окончание пробного периода
	IsActive       bool       // Флаг активности профиля
}

// IsAdminRole сообщает, относится ли роль к административным.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}
