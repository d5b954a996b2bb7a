package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config содержит настройки подключения к RabbitMQ
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// RabbitMQ представляет клиент для работы с RabbitMQ.
// Канал один на подключение, доступ к нему сериализуется мьютексом:
// публикация из HTTP-обработчиков и управление консьюмером идут из разных горутин.
type RabbitMQ struct {
	config     Config
	connection *amqp.Connection

	mu        sync.Mutex
	channel   *amqp.Channel
	consumers map[string]chan struct{} // тег консьюмера -> сигнал завершения цикла обработки
}

func NewRabbitMQ(cfg Config) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		config:    cfg,
		consumers: make(map[string]chan struct{}),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

// connect устанавливает соединение с RabbitMQ
func (r *RabbitMQ) connect() error {
	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		r.config.User, r.config.Password, r.config.Host, r.config.Port, r.config.VHost)

	conn, err := amqp.Dial(connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	r.connection = conn

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	r.channel = ch

	return nil
}

// reconnect пытается восстановить соединение с RabbitMQ
func (r *RabbitMQ) reconnect() error {
	if r.connection != nil && !r.connection.IsClosed() {
		return nil
	}

	log.Println("Попытка переподключения к RabbitMQ...")
	return r.connect()
}

// Close закрывает соединение с RabbitMQ
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии канала: %w", err)
		}
	}
	if r.connection != nil {
		if err := r.connection.Close(); err != nil {
			return fmt.Errorf("ошибка при закрытии соединения: %w", err)
		}
	}
	return nil
}

// DeclareQueue объявляет долговечную очередь
func (r *RabbitMQ) DeclareQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед объявлением очереди: %w", err)
	}

	_, err := r.channel.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	return err
}

// PublishMessage публикует персистентное сообщение в очередь через default exchange
func (r *RabbitMQ) PublishMessage(queueName string, message interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед публикацией сообщения: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return r.channel.PublishWithContext(
		ctx,
		"",        // exchange (default)
		queueName, // routing key = имя очереди
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// PublishMessageWithRetry публикует сообщение с повторными попытками
func (r *RabbitMQ) PublishMessageWithRetry(queueName string, message interface{}, retries int) error {
	var err error
	for i := 0; i <= retries; i++ {
		if err = r.PublishMessage(queueName, message); err == nil {
			return nil
		}

		log.Printf("Ошибка публикации сообщения (попытка %d/%d): %v", i+1, retries+1, err)

		if i < retries {
			backoff := time.Duration(i+1) * time.Second
			log.Printf("Повторная попытка через %v...", backoff)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("не удалось опубликовать сообщение после %d попыток: %w", retries+1, err)
}

// ConsumeMessages начинает обработку сообщений из очереди.
// Окно prefetch равно 1: следующее сообщение не доставляется, пока обработчик
// не завершил текущее. Подтверждение отправляется только после успешного
// возврата обработчика; ошибка приводит к nack с возвратом в очередь.
func (r *RabbitMQ) ConsumeMessages(queueName, consumerName string, handler func([]byte) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reconnect(); err != nil {
		return fmt.Errorf("ошибка переподключения перед обработкой сообщений: %w", err)
	}

	if err := r.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("ошибка установки prefetch: %w", err)
	}

	msgs, err := r.channel.Consume(
		queueName,    // queue
		consumerName, // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("ошибка при начале обработки сообщений: %w", err)
	}

	done := make(chan struct{})
	r.consumers[consumerName] = done

	go r.handleMessages(msgs, handler, done)

	return nil
}

func (r *RabbitMQ) handleMessages(msgs <-chan amqp.Delivery, handler func([]byte) error, done chan struct{}) {
	defer close(done)

	for msg := range msgs {
		if err := handler(msg.Body); err != nil {
			log.Printf("Ошибка обработки сообщения, возврат в очередь: %v", err)
			msg.Nack(false, true)
		} else {
			msg.Ack(false)
		}
	}
}

// StopConsuming потокобезопасно останавливает всех консьюмеров и ждет
// завершения их циклов обработки не дольше timeout.
func (r *RabbitMQ) StopConsuming(timeout time.Duration) error {
	r.mu.Lock()
	doneChans := make([]chan struct{}, 0, len(r.consumers))
	for tag, done := range r.consumers {
		if err := r.channel.Cancel(tag, false); err != nil {
			log.Printf("Ошибка отмены консьюмера %s: %v", tag, err)
		}
		doneChans = append(doneChans, done)
		delete(r.consumers, tag)
	}
	r.mu.Unlock()

	deadline := time.After(timeout)
	for _, done := range doneChans {
		select {
		case <-done:
		case <-deadline:
			return fmt.Errorf("консьюмер не завершил обработку за %v", timeout)
		}
	}
	return nil
}
