package rabbitmq

// NotificationsExchange — exchange писем-напоминаний об истечении доступа.
const NotificationsExchange = "notifications"

// Маршрутизация напоминаний об истекающем доступе.
const (
	ExpiringQueue      = "notifications.expiring"
	ExpiringRoutingKey = "expiring"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые объявляет каждый процесс.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ExpiringQueue, RoutingKey: ExpiringRoutingKey},
	}
}
