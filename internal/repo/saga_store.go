package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mvshop/orchestration-service/internal/entity"
)

// Префиксы ключей в Redis
const (
	orderSagaPrefix   = "order_saga:"
	productSagaPrefix = "product_saga:"
	paymentSagaPrefix = "payment_saga:"
	orderIndexPrefix  = "order_id:"
)

// DefaultSagaTTL время жизни записей саги по умолчанию.
// TTL обновляется при каждой записи, поэтому активная сага не истекает.
const DefaultSagaTTL = 600 * time.Second

// RedisSagaStore хранилище состояния саг в Redis
type RedisSagaStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSagaStore создает хранилище саг с указанным временем жизни записей.
// Если ttl не задан, используется DefaultSagaTTL.
func NewRedisSagaStore(client *redis.Client, ttl time.Duration) *RedisSagaStore {
	if ttl <= 0 {
		ttl = DefaultSagaTTL
	}
	return &RedisSagaStore{
		client: client,
		ttl:    ttl,
	}
}

// set сериализует значение и записывает его с обновлением TTL
func (s *RedisSagaStore) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи %s в Redis: %w", key, err)
	}

	return nil
}

// SaveOrderSaga сохраняет состояние саги заказа
func (s *RedisSagaStore) SaveOrderSaga(ctx context.Context, state *entity.OrderSagaState) error {
	return s.set(ctx, orderSagaPrefix+state.TransactionID, state)
}

// GetOrderSaga возвращает состояние саги заказа.
// Отсутствие записи не является ошибкой: возвращается (nil, nil).
func (s *RedisSagaStore) GetOrderSaga(ctx context.Context, transactionID string) (*entity.OrderSagaState, error) {
	data, err := s.client.Get(ctx, orderSagaPrefix+transactionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения саги заказа %s: %w", transactionID, err)
	}

	var state entity.OrderSagaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ошибка десериализации саги заказа %s: %w", transactionID, err)
	}

	return &state, nil
}

// SaveProductSaga сохраняет состояние саги по товарам
func (s *RedisSagaStore) SaveProductSaga(ctx context.Context, state *entity.ProductSagaState) error {
	return s.set(ctx, productSagaPrefix+state.TransactionID, state)
}

// GetProductSaga возвращает состояние саги по товарам
func (s *RedisSagaStore) GetProductSaga(ctx context.Context, transactionID string) (*entity.ProductSagaState, error) {
	data, err := s.client.Get(ctx, productSagaPrefix+transactionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения саги товаров %s: %w", transactionID, err)
	}

	var state entity.ProductSagaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ошибка десериализации саги товаров %s: %w", transactionID, err)
	}

	return &state, nil
}

// SavePaymentSaga сохраняет состояние саги платежа
func (s *RedisSagaStore) SavePaymentSaga(ctx context.Context, state *entity.PaymentSagaState) error {
	return s.set(ctx, paymentSagaPrefix+state.TransactionID, state)
}

// GetPaymentSaga возвращает состояние саги платежа
func (s *RedisSagaStore) GetPaymentSaga(ctx context.Context, transactionID string) (*entity.PaymentSagaState, error) {
	data, err := s.client.Get(ctx, paymentSagaPrefix+transactionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения саги платежа %s: %w", transactionID, err)
	}

	var state entity.PaymentSagaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ошибка десериализации саги платежа %s: %w", transactionID, err)
	}

	return &state, nil
}

// SaveOrderIndex сохраняет соответствие order_id -> transaction_id.
// Индекс нужен для отмены заказа по его идентификатору.
func (s *RedisSagaStore) SaveOrderIndex(ctx context.Context, orderID, transactionID string) error {
	if err := s.client.Set(ctx, orderIndexPrefix+orderID, transactionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи индекса заказа %s: %w", orderID, err)
	}
	return nil
}

// GetTransactionIDByOrderID возвращает идентификатор транзакции по идентификатору заказа.
// Отсутствие записи не является ошибкой: возвращается пустая строка.
func (s *RedisSagaStore) GetTransactionIDByOrderID(ctx context.Context, orderID string) (string, error) {
	transactionID, err := s.client.Get(ctx, orderIndexPrefix+orderID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения индекса заказа %s: %w", orderID, err)
	}
	return transactionID, nil
}
