package models

import "time"

// Plan представляет позицию каталога тарифов (тариф × цикл оплаты).
// Каталог редактируется администратором и используется только для витрины
// и сопоставления plan_type в webhook; вычисление доступа его не читает.
type Plan struct {
	ID           int       // Идентификатор позиции каталога
	Name         string    // Отображаемое название
	PlanType     string    // Составная строка тарифа, например "essencial_mensal"
	Price        float64   // Цена за период
	Currency     string    // Валюта, например "BRL"
	Features     string    // Текстовый список возможностей для витрины
	CheckoutURL  string    // Внешняя ссылка на оплату
	IsActive     bool      // Показывать ли позицию на витрине
	DisplayOrder int       // Порядок сортировки на витрине
	CreatedAt    time.Time // Дата создания
}

// DummyPlan используется для приёма данных тарифа из JSON-запроса
// административного инструмента.
type DummyPlan struct {
	Name         string  `json:"name" validate:"required"`
	PlanType     string  `json:"plan_type" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	Features     string  `json:"features"`
	CheckoutURL  string  `json:"checkout_url" validate:"omitempty,url"`
	IsActive     bool    `json:"is_active"`
	DisplayOrder int     `json:"display_order"`
}
