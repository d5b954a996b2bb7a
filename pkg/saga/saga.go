package saga

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrUnknownEvent возвращается при получении ответа с неизвестным типом события
var ErrUnknownEvent = fmt.Errorf("неизвестный тип события")

// IsErrorStatus проверяет статус ответа участника на признак ошибки
func IsErrorStatus(status string) bool {
	return strings.Contains(status, "error")
}

// NewCommand создает конверт команды с сериализованными данными
func NewCommand(event, transactionID string, data interface{}) (Envelope, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("ошибка маршалинга данных команды %s: %w", event, err)
	}

	return Envelope{
		Event:         event,
		TransactionID: transactionID,
		Data:          dataBytes,
	}, nil
}

// ParseReply разбирает входящее сообщение из orchestration_queue.
// Сообщения с неизвестным событием отклоняются с ErrUnknownEvent:
// вызывающая сторона подтверждает и отбрасывает их.
func ParseReply(body []byte) (Reply, error) {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Reply{}, fmt.Errorf("ошибка десериализации конверта: %w", err)
	}

	reply := Reply{
		Event:         envelope.Event,
		TransactionID: envelope.TransactionID,
		Status:        envelope.Status,
	}

	switch envelope.Event {
	case EventReduceStock:
		reply.Kind = ReplyStockReduced
	case EventTakePayment:
		reply.Kind = ReplyPaymentTaken
		if !reply.Failed() {
			var data struct {
				PaymentID string `json:"payment_id"`
			}
			if err := json.Unmarshal(envelope.Data, &data); err != nil {
				return Reply{}, fmt.Errorf("ошибка разбора данных ответа take_payment: %w", err)
			}
			reply.PaymentID = data.PaymentID
		}
	case EventCreateOrder:
		reply.Kind = ReplyOrderCreated
		if !reply.Failed() {
			var data struct {
				OrderID string `json:"order_id"`
			}
			if err := json.Unmarshal(envelope.Data, &data); err != nil {
				return Reply{}, fmt.Errorf("ошибка разбора данных ответа create_order: %w", err)
			}
			reply.OrderID = data.OrderID
		}
	default:
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownEvent, envelope.Event)
	}

	return reply, nil
}
