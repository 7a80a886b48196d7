package models

import (
	"encoding/json"
	"time"
)

// PaymentEvent представляет неизменяемую запись аудита входящего события
// платёжного провайдера. Записи только добавляются, исходный payload
// сохраняется целиком для разбора инцидентов.
type PaymentEvent struct {
	ID            string          // Идентификатор записи (uuid)
	Provider      string          // Имя провайдера: asaas или stripe
	UserUID       string          // Идентификатор пользователя, пустой для неатрибутированных событий
	Event         string          // Исходное имя события провайдера
	Status        string          // Статус подписки, в который отображено событие
	Amount        float64         // Сумма транзакции
	TransactionID string          // Идентификатор транзакции у провайдера
	Payload       json.RawMessage // Полный исходный payload
	CreatedAt     time.Time       // Время приёма события
}
