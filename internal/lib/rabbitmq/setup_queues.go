package rabbitmq

// NotificationsExchange — direct-обменник уведомлений.
const NotificationsExchange = "notifications"

// Ключи маршрутизации и имена очередей уведомлений.
const (
	ReminderRoutingKey = "reminder"
	FeedbackRoutingKey = "feedback"

	ReminderQueue = "notification.reminder"
	FeedbackQueue = "notification.feedback"
)

// QueueConfig описывает очередь и её ключ привязки.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди напоминаний и запросов обратной связи.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ReminderQueue, RoutingKey: ReminderRoutingKey},
		{QueueName: FeedbackQueue, RoutingKey: FeedbackRoutingKey},
	}
}
