package models

import "slices"

// PlanTier — уровень тарифа, определяющий набор разрешений.
type PlanTier string

// Уровни тарифов. TierEssencial — легаси-алиас младшего платного уровня.
const (
	TierFree      PlanTier = "free"
	TierEssencial PlanTier = "essencial"
	TierPremium   PlanTier = "premium"
)

// Источники, из которых вычислен статус доступа.
const (
	SourceAdminOverride = "admin-override"
	SourceWorkshop      = "workshop"
	SourceSubscriptions = "subscriptions"
	SourceProfile       = "profile"
	SourceNone          = "none"
)

// PermissionAll — wildcard-токен, при котором любая проверка возможности проходит.
const PermissionAll = "*"

// UnboundedDays — сентинел "без ограничения срока" для daysRemaining.
const UnboundedDays = 999

// EntitlementStatus — вычисленный статус доступа пользователя.
// Статус всегда производный: он пересчитывается из профиля, мастерской и
// подписок при каждой проверке, допускается только краткоживущий кеш результата.
type EntitlementStatus struct {
	IsActive          bool     `json:"is_active"`           // Есть ли платный/пробный доступ
	PlanTier          PlanTier `json:"plan_tier"`           // Уровень тарифа
	PlanName          string   `json:"plan_name"`           // Человекочитаемое имя плана
	Permissions       []string `json:"permissions"`         // Токены возможностей или wildcard
	DaysRemaining     int      `json:"days_remaining"`      // Остаток дней доступа, >= 0
	Source            string   `json:"source"`              // Источник решения
	IsAdmin           bool     `json:"is_admin"`            // Административная роль
	CanAccessFeatures bool     `json:"can_access_features"` // IsActive или IsAdmin
}

// HasFeature проверяет токен возможности: проходит при wildcard
// или явном наличии токена. Порядок элементов не имеет значения.
func (e *EntitlementStatus) HasFeature(token string) bool {
	return slices.Contains(e.Permissions, PermissionAll) ||
		slices.Contains(e.Permissions, token)
}

// Статические наборы разрешений по уровням. Базовые возможности clients и
// budgets доступны даже без оплаченного плана.
var (
	freePermissions = []string{"clients", "budgets"}

	essencialPermissions = []string{
		"clients", "budgets", "services", "scheduling",
		"basic_reports", "automatic_backup",
	}

	premiumPermissions = []string{
		"clients", "budgets", "services", "products", "vehicles",
		"scheduling", "inventory", "advanced_reports", "basic_reports",
		"marketing", "ai_diagnostics", "accounting_integration",
		"backup", "priority_support", "settings",
	}
)

// PermissionsForTier возвращает копию набора разрешений для уровня тарифа.
func PermissionsForTier(tier PlanTier) []string {
	switch tier {
	case TierPremium:
		return slices.Clone(premiumPermissions)
	case TierEssencial:
		return slices.Clone(essencialPermissions)
	default:
		return slices.Clone(freePermissions)
	}
}

// AdminPermissions возвращает wildcard-набор администратора.
func AdminPermissions() []string {
	return []string{PermissionAll}
}
