package usecase

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/mvshop/orchestration-service/internal/entity"
	"github.com/mvshop/orchestration-service/pkg/errors"
	"github.com/mvshop/orchestration-service/pkg/messaging"
	"github.com/mvshop/orchestration-service/pkg/saga"
)

// SagaStore интерфейс хранилища состояния саг
type SagaStore interface {
	SaveOrderSaga(ctx context.Context, state *entity.OrderSagaState) error
	GetOrderSaga(ctx context.Context, transactionID string) (*entity.OrderSagaState, error)
	SaveProductSaga(ctx context.Context, state *entity.ProductSagaState) error
	GetProductSaga(ctx context.Context, transactionID string) (*entity.ProductSagaState, error)
	SavePaymentSaga(ctx context.Context, state *entity.PaymentSagaState) error
	GetPaymentSaga(ctx context.Context, transactionID string) (*entity.PaymentSagaState, error)
	SaveOrderIndex(ctx context.Context, orderID, transactionID string) error
	GetTransactionIDByOrderID(ctx context.Context, orderID string) (string, error)
}

// SagaOrchestrator координирует сагу заказа: запускает ее по запросу ингресса,
// обрабатывает ответы участников из orchestration_queue и публикует
// команды компенсации при сбоях и отменах
type SagaOrchestrator struct {
	store     SagaStore
	publisher messaging.MessagePublisher
	logger    *log.Logger
}

// NewSagaOrchestrator создает новый оркестратор саги
func NewSagaOrchestrator(store SagaStore, publisher messaging.MessagePublisher, logger *log.Logger) *SagaOrchestrator {
	if logger == nil {
		logger = log.New(os.Stdout, "[SagaOrchestrator] [Saga] ", log.LstdFlags)
	}

	return &SagaOrchestrator{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// StartOrderSaga запускает новую сагу заказа: сохраняет начальные записи
// и публикует команду резервирования склада. Возвращает идентификатор
// транзакции; завершение саги асинхронное.
func (o *SagaOrchestrator) StartOrderSaga(ctx context.Context, req *entity.CreateOrderRequest) (string, error) {
	if !entity.IsValidPaymentMethod(req.PaymentMethod) {
		return "", errors.NewBadRequestError("недопустимый способ оплаты: " + req.PaymentMethod)
	}

	transactionID := uuid.New().String()

	order := &entity.OrderSagaState{
		TransactionID:   transactionID,
		UserEmail:       req.UserEmail,
		VendorEmail:     req.VendorEmail,
		DeliveryAddress: req.DeliveryAddress,
		Description:     req.Description,
		Status:          entity.OrderSagaStatusPending,
		Items:           req.Items,
		PaymentMethod:   req.PaymentMethod,
	}

	products := make([]entity.ProductQuantity, 0, len(req.Items))
	for _, item := range req.Items {
		products = append(products, entity.ProductQuantity{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	productSaga := &entity.ProductSagaState{
		TransactionID: transactionID,
		Products:      products,
	}

	// Записи сохраняются строго до публикации команды: при падении
	// после публикации ответ участника найдет состояние саги
	if err := o.store.SaveOrderSaga(ctx, order); err != nil {
		return "", err
	}
	if err := o.store.SaveProductSaga(ctx, productSaga); err != nil {
		return "", err
	}

	wireProducts := make([]saga.ProductQuantity, 0, len(products))
	for _, p := range products {
		wireProducts = append(wireProducts, saga.ProductQuantity{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	command, err := saga.NewCommand(saga.EventReduceStock, transactionID, saga.ReduceStockData{
		Products: wireProducts,
	})
	if err != nil {
		return "", err
	}

	if err := messaging.PublishWithLogging(o.publisher, saga.ProductsQueue, command); err != nil {
		return "", err
	}

	o.logger.Printf("Сага %s запущена для пользователя %s", transactionID, req.UserEmail)
	return transactionID, nil
}

// CancelOrderSaga отменяет сагу по идентификатору заказа.
// Набор компенсаций определяется текущим состоянием саги.
func (o *SagaOrchestrator) CancelOrderSaga(ctx context.Context, orderID string) error {
	transactionID, err := o.store.GetTransactionIDByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if transactionID == "" {
		return errors.NewNotFoundError("заказ", orderID)
	}

	order, err := o.store.GetOrderSaga(ctx, transactionID)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.NewNotFoundError("сага заказа", transactionID)
	}

	payment, err := o.store.GetPaymentSaga(ctx, transactionID)
	if err != nil {
		return err
	}

	result, err := Cancel(order, payment)
	if err != nil {
		return err
	}
	if result.Dropped {
		o.logger.Printf("Сага %s уже в конечном состоянии %s, отмена пропущена", transactionID, order.Status)
		return nil
	}

	if err := o.applyResult(ctx, result); err != nil {
		return err
	}

	o.logger.Printf("Сага %s отменена, опубликовано компенсаций: %d", transactionID, len(result.Commands))
	return nil
}

// HandleSagaEvent обрабатывает одно сообщение из orchestration_queue.
// Возврат nil подтверждает доставку; ошибка приводит к повторной доставке.
func (o *SagaOrchestrator) HandleSagaEvent(body []byte) error {
	reply, err := saga.ParseReply(body)
	if err != nil {
		// Неизвестные и некорректные сообщения подтверждаются и отбрасываются,
		// повторная доставка их не исправит
		o.logger.Printf("[WARN] Сообщение отброшено: %v", err)
		return nil
	}

	ctx := context.Background()

	order, err := o.store.GetOrderSaga(ctx, reply.TransactionID)
	if err != nil {
		return err
	}
	if order == nil {
		o.logger.Printf("[WARN] Сага %s не найдена, ответ %s отброшен", reply.TransactionID, reply.Event)
		return nil
	}

	payment, err := o.store.GetPaymentSaga(ctx, reply.TransactionID)
	if err != nil {
		return err
	}

	result, err := Transition(order, payment, reply)
	if err != nil {
		return err
	}
	if result.Dropped {
		if order.Status.IsTerminal() {
			o.logger.Printf("Сага %s завершена в состоянии %s, ответ %s отброшен", reply.TransactionID, order.Status, reply.Event)
		} else {
			o.logger.Printf("Повторный ответ %s для саги %s в состоянии %s отброшен", reply.Event, reply.TransactionID, order.Status)
		}
		return nil
	}

	if err := o.applyResult(ctx, result); err != nil {
		return err
	}

	o.logger.Printf("Сага %s: обработан ответ %s со статусом %q, новое состояние %s",
		reply.TransactionID, reply.Event, reply.Status, order.Status)
	return nil
}

// applyResult сохраняет записи саги и публикует исходящие команды.
// Запись в хранилище выполняется до публикации.
func (o *SagaOrchestrator) applyResult(ctx context.Context, result TransitionResult) error {
	if result.Order != nil {
		if err := o.store.SaveOrderSaga(ctx, result.Order); err != nil {
			return err
		}
	}
	if result.Payment != nil {
		if err := o.store.SavePaymentSaga(ctx, result.Payment); err != nil {
			return err
		}
	}
	if result.IndexOrderID != "" {
		if err := o.store.SaveOrderIndex(ctx, result.IndexOrderID, result.Order.TransactionID); err != nil {
			return err
		}
	}

	for _, command := range result.Commands {
		if err := messaging.PublishWithLogging(o.publisher, command.Queue, command.Message); err != nil {
			return err
		}
	}

	return nil
}
