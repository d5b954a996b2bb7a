package rabbitmq

import (
	"log"
	"os"
	"time"

	"github.com/mvshop/orchestration-service/pkg/messaging"
	"github.com/mvshop/orchestration-service/pkg/saga"
)

// consumerName имя потребителя очереди ответов
const consumerName = "orchestration_service"

// EventHandler обрабатывает одно сообщение из очереди ответов.
// Возврат nil подтверждает доставку, ошибка приводит к повторной доставке.
type EventHandler interface {
	HandleSagaEvent(body []byte) error
}

// OrchestrationConsumer потребитель очереди ответов участников саги
type OrchestrationConsumer struct {
	consumer messaging.MessageConsumer
	handler  EventHandler
	logger   *log.Logger
}

// NewOrchestrationConsumer создает потребителя очереди ответов
func NewOrchestrationConsumer(consumer messaging.MessageConsumer, handler EventHandler, logger *log.Logger) *OrchestrationConsumer {
	if logger == nil {
		logger = log.New(os.Stdout, "[SagaOrchestrator] [Consumer] ", log.LstdFlags)
	}

	return &OrchestrationConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start запускает фоновую обработку сообщений из orchestration_queue
func (c *OrchestrationConsumer) Start() error {
	err := c.consumer.ConsumeMessages(saga.OrchestrationQueue, consumerName, c.handle)
	if err != nil {
		return err
	}

	c.logger.Printf("Потребитель очереди %s запущен", saga.OrchestrationQueue)
	return nil
}

func (c *OrchestrationConsumer) handle(body []byte) error {
	if err := c.handler.HandleSagaEvent(body); err != nil {
		c.logger.Printf("[ERROR] Ошибка обработки сообщения, будет выполнена повторная доставка: %v", err)
		return err
	}
	return nil
}

// Stop останавливает потребителя с ожиданием завершения текущей обработки
func (c *OrchestrationConsumer) Stop(timeout time.Duration) error {
	return c.consumer.StopConsuming(timeout)
}
