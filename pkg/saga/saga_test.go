package saga

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsErrorStatus(t *testing.T) {
	assert.True(t, IsErrorStatus("error"))
	assert.True(t, IsErrorStatus("error: out of stock"))
	assert.True(t, IsErrorStatus("validation error"))
	assert.False(t, IsErrorStatus("success"))
	assert.False(t, IsErrorStatus(""))
	// Проверка чувствительна к регистру
	assert.False(t, IsErrorStatus("Error"))
}

func TestParseReply_StockReduced(t *testing.T) {
	body := []byte(`{"event":"reduce_stock","transaction_id":"tx-1","status":"success","data":{}}`)

	reply, err := ParseReply(body)
	require.NoError(t, err)
	assert.Equal(t, ReplyStockReduced, reply.Kind)
	assert.Equal(t, "tx-1", reply.TransactionID)
	assert.False(t, reply.Failed())
}

func TestParseReply_PaymentTakenCarriesPaymentID(t *testing.T) {
	body := []byte(`{"event":"take_payment","transaction_id":"tx-1","status":"success","data":{"payment_id":"pay-1"}}`)

	reply, err := ParseReply(body)
	require.NoError(t, err)
	assert.Equal(t, ReplyPaymentTaken, reply.Kind)
	assert.Equal(t, "pay-1", reply.PaymentID)
}

func TestParseReply_FailedPaymentSkipsData(t *testing.T) {
	// При ошибке участника данные не разбираются
	body := []byte(`{"event":"take_payment","transaction_id":"tx-1","status":"error: card declined","data":null}`)

	reply, err := ParseReply(body)
	require.NoError(t, err)
	assert.True(t, reply.Failed())
	assert.Empty(t, reply.PaymentID)
}

func TestParseReply_OrderCreatedCarriesOrderID(t *testing.T) {
	body := []byte(`{"event":"create_order","transaction_id":"tx-1","status":"success","data":{"order_id":"order-1"}}`)

	reply, err := ParseReply(body)
	require.NoError(t, err)
	assert.Equal(t, ReplyOrderCreated, reply.Kind)
	assert.Equal(t, "order-1", reply.OrderID)
}

func TestParseReply_UnknownEvent(t *testing.T) {
	body := []byte(`{"event":"unknown_event","transaction_id":"tx-1","status":"success","data":{}}`)

	_, err := ParseReply(body)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestParseReply_MalformedBody(t *testing.T) {
	_, err := ParseReply([]byte("не json"))
	require.Error(t, err)
}

func TestTakePaymentData_OrderIDSerializesAsNull(t *testing.T) {
	data, err := json.Marshal(TakePaymentData{
		UserEmail:     "customer@example.com",
		Amount:        25.5,
		PaymentMethod: "Credit Card",
		PaymentStatus: "Pending",
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_id":null`)
}

func TestNewCommand(t *testing.T) {
	command, err := NewCommand(EventReduceStock, "tx-1", ReduceStockData{
		Products: []ProductQuantity{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, EventReduceStock, command.Event)
	assert.Equal(t, "tx-1", command.TransactionID)
	assert.JSONEq(t, `{"products":[{"product_id":"p1","quantity":2}]}`, string(command.Data))
}
