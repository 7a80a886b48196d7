package models

import "time"

// Workshop представляет зарегистрированную автомастерскую пользователя.
// Наличие активной мастерской само по себе даёт полный платный доступ
// (продуктовое решение, независимое от биллинга). В легаси-схеме два
// избыточных флага активности; запись считается активной, если истинен
// хотя бы один из них.
type Workshop struct {
	ID           string     // Идентификатор мастерской
	UserUID      string     // Идентификатор пользователя-владельца
	Name         string     // Название мастерской
	Plan         string     // Текстовая метка плана (легаси-поле)
	IsActive     bool       // Первый флаг активности
	Active       bool       // Второй (избыточный) флаг активности
	TrialEndDate *time.Time // Окончание пробного периода мастерской
	CreatedAt    time.Time  // Дата регистрации
}

// Enabled сообщает, считается ли мастерская активной.
func (w *Workshop) Enabled() bool {
	return w.IsActive || w.Active
}

// DummyWorkshop используется для приёма данных регистрации мастерской из JSON-запроса.
type DummyWorkshop struct {
	Name string `json:"name" validate:"required,min=2"`
}
