package usecase

import (
	"fmt"

	"github.com/mvshop/orchestration-service/internal/entity"
	"github.com/mvshop/orchestration-service/pkg/saga"
)

// Command исходящая команда участнику саги
type Command struct {
	Queue   string
	Message saga.Envelope
}

// TransitionResult результат одного шага машины состояний саги.
// Поля Order и Payment содержат записи, которые нужно сохранить;
// nil означает, что запись на этом шаге не меняется.
type TransitionResult struct {
	Order   *entity.OrderSagaState
	Payment *entity.PaymentSagaState
	// IndexOrderID непустой, если нужно записать индекс order_id -> transaction_id
	IndexOrderID string
	// Commands публикуются строго в указанном порядке
	Commands []Command
	// Dropped означает, что ответ не относится к текущему состоянию саги:
	// он подтверждается и отбрасывается без изменений
	Dropped bool
}

func (r *TransitionResult) appendCommand(queue, event, transactionID string, data interface{}) error {
	message, err := saga.NewCommand(event, transactionID, data)
	if err != nil {
		return err
	}
	r.Commands = append(r.Commands, Command{Queue: queue, Message: message})
	return nil
}

func (r *TransitionResult) appendTakePayment(order *entity.OrderSagaState) error {
	return r.appendCommand(saga.PaymentQueue, saga.EventTakePayment, order.TransactionID, saga.TakePaymentData{
		UserEmail:     order.UserEmail,
		Amount:        order.TotalPrice(),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: string(entity.PaymentStatusPending),
	})
}

func (r *TransitionResult) appendCreateOrder(order *entity.OrderSagaState) error {
	return r.appendCommand(saga.OrdersQueue, saga.EventCreateOrder, order.TransactionID, saga.CreateOrderData{
		UserEmail:       order.UserEmail,
		VendorEmail:     order.VendorEmail,
		DeliveryAddress: order.DeliveryAddress,
		Description:     order.Description,
		Status:          "Pending",
		Items:           orderItemsToWire(order.Items),
	})
}

// appendCorrelation добавляет команды корреляции строго в этом порядке
func (r *TransitionResult) appendCorrelation(order *entity.OrderSagaState) error {
	err := r.appendCommand(saga.OrdersQueue, saga.EventUpdateOrderPaymentID, order.TransactionID, saga.UpdateOrderPaymentIDData{
		OrderID:   order.OrderID,
		PaymentID: order.PaymentID,
	})
	if err != nil {
		return err
	}
	return r.appendCommand(saga.PaymentQueue, saga.EventUpdatePaymentOrderID, order.TransactionID, saga.UpdatePaymentOrderIDData{
		PaymentID: order.PaymentID,
		OrderID:   order.OrderID,
	})
}

func (r *TransitionResult) appendRollbackStock(order *entity.OrderSagaState) error {
	return r.appendCommand(saga.ProductsQueue, saga.EventRollbackStock, order.TransactionID, struct{}{})
}

func (r *TransitionResult) appendRollbackPayment(order *entity.OrderSagaState) error {
	return r.appendCommand(saga.PaymentQueue, saga.EventRollbackPayment, order.TransactionID, saga.RollbackPaymentData{
		PaymentID: order.PaymentID,
	})
}

// Transition применяет ответ участника к текущему состоянию саги и возвращает
// новые записи и исходящие команды. Функция чистая: ничего не сохраняет
// и не публикует, этим занимается оркестратор.
//
// Запись сохраняется до публикации команд, поэтому при сбое публикации
// повторно доставленный ответ застает сагу уже в продвинутом состоянии.
// Если ответ соответствует шагу, который это состояние породил, команды
// шага переиздаются без изменения записи; остальные несовпадающие ответы
// подтверждаются и отбрасываются.
func Transition(order *entity.OrderSagaState, payment *entity.PaymentSagaState, reply saga.Reply) (TransitionResult, error) {
	switch reply.Kind {
	case saga.ReplyStockReduced:
		return transitionStockReduced(order, reply)
	case saga.ReplyPaymentTaken:
		return transitionPaymentTaken(order, payment, reply)
	case saga.ReplyOrderCreated:
		return transitionOrderCreated(order, payment, reply)
	default:
		return TransitionResult{}, fmt.Errorf("%w: %s", saga.ErrUnknownEvent, reply.Event)
	}
}

// transitionStockReduced обрабатывает ответ сервиса склада на reduce_stock
func transitionStockReduced(order *entity.OrderSagaState, reply saga.Reply) (TransitionResult, error) {
	// Повторная доставка шага, породившего текущее состояние:
	// переиздание take_payment без изменения записей
	if !reply.Failed() && order.Status == entity.OrderSagaStatusStockReduced {
		result := TransitionResult{}
		if err := result.appendTakePayment(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	if order.Status != entity.OrderSagaStatusPending {
		return TransitionResult{Dropped: true}, nil
	}

	result := TransitionResult{Order: order}

	if reply.Failed() {
		// Склад не зарезервирован, компенсировать нечего
		order.Status = entity.OrderSagaStatusFailed
		return result, nil
	}

	order.Status = entity.OrderSagaStatusStockReduced

	// Запись платежа создается до команды take_payment: сервис платежей
	// отвечает асинхронно, а сумма должна быть зафиксирована заранее
	result.Payment = &entity.PaymentSagaState{
		TransactionID: order.TransactionID,
		UserEmail:     order.UserEmail,
		Amount:        order.TotalPrice(),
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: entity.PaymentStatusPending,
	}

	if err := result.appendTakePayment(order); err != nil {
		return TransitionResult{}, err
	}

	return result, nil
}

// transitionPaymentTaken обрабатывает ответ сервиса платежей на take_payment
func transitionPaymentTaken(order *entity.OrderSagaState, payment *entity.PaymentSagaState, reply saga.Reply) (TransitionResult, error) {
	// Повторная доставка успешного ответа после сбоя публикации create_order
	if !reply.Failed() && order.Status == entity.OrderSagaStatusPaymentTaken && reply.PaymentID == order.PaymentID {
		result := TransitionResult{}
		if err := result.appendCreateOrder(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	// Повторная доставка ошибочного ответа после сбоя публикации компенсации.
	// Сага, упавшая на этом шаге, имеет запись платежа, но не payment_id.
	if reply.Failed() && order.Status == entity.OrderSagaStatusFailed && payment != nil && order.PaymentID == "" {
		result := TransitionResult{}
		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	if order.Status != entity.OrderSagaStatusStockReduced {
		return TransitionResult{Dropped: true}, nil
	}

	result := TransitionResult{Order: order, Payment: payment}

	if reply.Failed() {
		order.Status = entity.OrderSagaStatusFailed
		if payment != nil {
			payment.PaymentStatus = entity.PaymentStatusFailed
		}

		// Компенсируется только уже выполненный шаг: резерв склада
		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	order.Status = entity.OrderSagaStatusPaymentTaken
	order.PaymentID = reply.PaymentID
	if payment != nil {
		payment.PaymentStatus = entity.PaymentStatusSuccess
	}

	if err := result.appendCreateOrder(order); err != nil {
		return TransitionResult{}, err
	}

	return result, nil
}

// transitionOrderCreated обрабатывает ответ сервиса заказов на create_order
func transitionOrderCreated(order *entity.OrderSagaState, payment *entity.PaymentSagaState, reply saga.Reply) (TransitionResult, error) {
	// Повторная доставка после сбоя публикации команд корреляции
	if !reply.Failed() && order.Status == entity.OrderSagaStatusCompleted && reply.OrderID == order.OrderID {
		result := TransitionResult{}
		if err := result.appendCorrelation(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	// Повторная доставка ошибочного ответа после сбоя публикации компенсаций.
	// Сага, упавшая на этом шаге, уже содержит payment_id.
	if reply.Failed() && order.Status == entity.OrderSagaStatusFailed && order.PaymentID != "" {
		result := TransitionResult{}
		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		if err := result.appendRollbackPayment(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	if order.Status != entity.OrderSagaStatusPaymentTaken {
		return TransitionResult{Dropped: true}, nil
	}

	result := TransitionResult{Order: order, Payment: payment}

	if reply.Failed() {
		order.Status = entity.OrderSagaStatusFailed
		if payment != nil {
			payment.PaymentStatus = entity.PaymentStatusFailed
		}

		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		if err := result.appendRollbackPayment(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil
	}

	order.Status = entity.OrderSagaStatusCompleted
	order.OrderID = reply.OrderID
	if payment != nil {
		payment.OrderID = reply.OrderID
	}
	result.IndexOrderID = reply.OrderID

	if err := result.appendCorrelation(order); err != nil {
		return TransitionResult{}, err
	}

	return result, nil
}

// Cancel применяет внешний запрос отмены к текущему состоянию саги.
// Набор компенсаций зависит от того, какие шаги уже выполнены.
func Cancel(order *entity.OrderSagaState, payment *entity.PaymentSagaState) (TransitionResult, error) {
	switch order.Status {
	case entity.OrderSagaStatusPending:
		// Еще ничего не сделано, компенсации не нужны
		order.Status = entity.OrderSagaStatusCanceled
		return TransitionResult{Order: order}, nil

	case entity.OrderSagaStatusStockReduced:
		order.Status = entity.OrderSagaStatusCanceled
		result := TransitionResult{Order: order, Payment: payment}
		if payment != nil {
			payment.PaymentStatus = entity.PaymentStatusCancelled
		}
		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		return result, nil

	case entity.OrderSagaStatusPaymentTaken, entity.OrderSagaStatusCompleted:
		order.Status = entity.OrderSagaStatusCanceled
		result := TransitionResult{Order: order, Payment: payment}
		if payment != nil {
			payment.PaymentStatus = entity.PaymentStatusCancelled
		}
		if err := result.appendRollbackStock(order); err != nil {
			return TransitionResult{}, err
		}
		if err := result.appendRollbackPayment(order); err != nil {
			return TransitionResult{}, err
		}
		if err := result.appendCommand(saga.OrdersQueue, saga.EventRollbackOrder, order.TransactionID, struct{}{}); err != nil {
			return TransitionResult{}, err
		}
		return result, nil

	default:
		// Сага уже завершена отменой или ошибкой, повторная отмена идемпотентна
		return TransitionResult{Dropped: true}, nil
	}
}

func orderItemsToWire(items []entity.OrderItem) []saga.OrderItem {
	wire := make([]saga.OrderItem, 0, len(items))
	for _, item := range items {
		wire = append(wire, saga.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return wire
}
