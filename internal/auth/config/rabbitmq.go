package config

// RabbitMQConfig содержит настройки очереди писем. Пустой URL отключает публикацию.
type RabbitMQConfig struct {
	URL   string `yaml:"url" env:"AUTH_RABBITMQ_URL" env-default:""`
	Queue string `yaml:"queue" env:"AUTH_RABBITMQ_EMAIL_QUEUE" env-default:"email_jobs"`
}

// Enabled сообщает, настроена ли публикация в RabbitMQ.
func (r *RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}
