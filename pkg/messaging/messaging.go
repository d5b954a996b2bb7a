package messaging

import (
	"log"
	"time"

	"github.com/mvshop/orchestration-service/pkg/config"
	"github.com/mvshop/orchestration-service/pkg/rabbitmq"
)

// MessagePublisher интерфейс для публикации сообщений в очереди
type MessagePublisher interface {
	PublishMessage(queueName string, message interface{}) error
	PublishMessageWithRetry(queueName string, message interface{}, retries int) error
}

// MessageConsumer интерфейс для получения сообщений
type MessageConsumer interface {
	DeclareQueue(name string) error
	ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error
	StopConsuming(timeout time.Duration) error
}

// MessageBroker объединяет функциональность публикации и обработки сообщений
type MessageBroker interface {
	MessagePublisher
	MessageConsumer
	Close() error
}

// InitRabbitMQ инициализирует подключение к RabbitMQ с общими параметрами
func InitRabbitMQ(cfg config.RabbitMQConfig) (*rabbitmq.RabbitMQ, error) {
	rmqCfg := rabbitmq.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		VHost:    cfg.VHost,
	}

	rmq, err := rabbitmq.NewRabbitMQ(rmqCfg)
	if err != nil {
		return nil, err
	}

	return rmq, nil
}

// SetupQueues объявляет долговечные очереди сервиса
func SetupQueues(broker MessageBroker, queues []string) error {
	for _, name := range queues {
		if err := broker.DeclareQueue(name); err != nil {
			return err
		}
	}
	return nil
}

// PublishRetries число повторных попыток публикации команды саги
const PublishRetries = 3

// PublishWithLogging публикует сообщение с повторными попытками
// и логированием успеха/ошибки
func PublishWithLogging(publisher MessagePublisher, queueName string, message interface{}) error {
	err := publisher.PublishMessageWithRetry(queueName, message, PublishRetries)
	if err != nil {
		log.Printf("Ошибка при публикации сообщения в очередь %s: %v", queueName, err)
		return err
	}

	log.Printf("Сообщение успешно опубликовано в очередь %s", queueName)
	return nil
}
