package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvshop/orchestration-service/internal/entity"
)

func newTestStore(t *testing.T) (*RedisSagaStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSagaStore(client, 0), mr
}

func testOrderSaga(transactionID string) *entity.OrderSagaState {
	return &entity.OrderSagaState{
		TransactionID:   transactionID,
		UserEmail:       "customer@example.com",
		VendorEmail:     "vendor@example.com",
		DeliveryAddress: "ул. Ленина, 1",
		Status:          entity.OrderSagaStatusPending,
		Items: []entity.OrderItem{
			{ProductID: "p-1", Quantity: 2, UnitPrice: 10.5},
		},
		PaymentMethod: entity.PaymentMethodCreditCard,
	}
}

func TestRedisSagaStore_OrderSagaRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved := testOrderSaga("tx-1")
	require.NoError(t, store.SaveOrderSaga(ctx, saved))

	got, err := store.GetOrderSaga(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved, got)
}

func TestRedisSagaStore_GetOrderSaga_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.GetOrderSaga(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSagaStore_TTLSetOnWrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOrderSaga(ctx, testOrderSaga("tx-ttl")))
	assert.Equal(t, DefaultSagaTTL, mr.TTL("order_saga:tx-ttl"))
}

func TestRedisSagaStore_TTLRefreshedOnRewrite(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	saved := testOrderSaga("tx-refresh")
	require.NoError(t, store.SaveOrderSaga(ctx, saved))

	// Часть TTL истекла, повторная запись должна вернуть полное время жизни
	mr.FastForward(400 * time.Second)
	require.Less(t, mr.TTL("order_saga:tx-refresh"), DefaultSagaTTL)

	saved.Status = entity.OrderSagaStatusStockReduced
	require.NoError(t, store.SaveOrderSaga(ctx, saved))
	assert.Equal(t, DefaultSagaTTL, mr.TTL("order_saga:tx-refresh"))
}

func TestRedisSagaStore_RecordExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOrderSaga(ctx, testOrderSaga("tx-expired")))
	mr.FastForward(DefaultSagaTTL + time.Second)

	got, err := store.GetOrderSaga(ctx, "tx-expired")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSagaStore_ProductSagaRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved := &entity.ProductSagaState{
		TransactionID: "tx-2",
		Products: []entity.ProductQuantity{
			{ProductID: "p-1", Quantity: 2},
			{ProductID: "p-2", Quantity: 1},
		},
	}
	require.NoError(t, store.SaveProductSaga(ctx, saved))

	got, err := store.GetProductSaga(ctx, "tx-2")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestRedisSagaStore_PaymentSagaRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved := &entity.PaymentSagaState{
		TransactionID: "tx-3",
		UserEmail:     "customer@example.com",
		Amount:        25.5,
		PaymentMethod: entity.PaymentMethodDebitCard,
		PaymentStatus: entity.PaymentStatusPending,
	}
	require.NoError(t, store.SavePaymentSaga(ctx, saved))

	got, err := store.GetPaymentSaga(ctx, "tx-3")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestRedisSagaStore_OrderIndex(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOrderIndex(ctx, "order-77", "tx-77"))
	assert.Equal(t, DefaultSagaTTL, mr.TTL("order_id:order-77"))

	transactionID, err := store.GetTransactionIDByOrderID(ctx, "order-77")
	require.NoError(t, err)
	assert.Equal(t, "tx-77", transactionID)

	missing, err := store.GetTransactionIDByOrderID(ctx, "order-missing")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
