package saga

import (
	"encoding/json"
)

// Имена очередей фиксированы и совпадают у всех участников саги
const (
	ProductsQueue      = "products_queue"
	OrdersQueue        = "orders_queue"
	PaymentQueue       = "payment_queue"
	OrchestrationQueue = "orchestration_queue"
)

// Исходящие команды оркестратора
const (
	EventReduceStock          = "reduce_stock"
	EventTakePayment          = "take_payment"
	EventCreateOrder          = "create_order"
	EventRollbackStock        = "rollback_stock"
	EventRollbackPayment      = "rollback_payment"
	EventRollbackOrder        = "rollback_order"
	EventUpdateOrderPaymentID = "update_order_payment_id"
	EventUpdatePaymentOrderID = "update_payment_order_id"
)

// Envelope представляет единый конверт сообщения саги: команда или ответ
type Envelope struct {
	Event         string          `json:"event"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status,omitempty"`
	Message       string          `json:"message,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// ProductQuantity элемент списка товаров в команде reduce_stock
type ProductQuantity struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderItem позиция заказа в команде create_order
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// ReduceStockData данные команды reduce_stock
type ReduceStockData struct {
	Products []ProductQuantity `json:"products"`
}

// TakePaymentData данные команды take_payment.
// OrderID на этом шаге всегда null: заказ создается после платежа,
// сервис платежей получает его позже командой update_payment_order_id.
type TakePaymentData struct {
	UserEmail     string  `json:"user_email"`
	OrderID       *string `json:"order_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	PaymentStatus string  `json:"payment_status"`
}

// CreateOrderData данные команды create_order
type CreateOrderData struct {
	UserEmail       string      `json:"user_email"`
	VendorEmail     string      `json:"vendor_email"`
	DeliveryAddress string      `json:"delivery_address"`
	Description     string      `json:"description,omitempty"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
}

// RollbackPaymentData данные команды rollback_payment
type RollbackPaymentData struct {
	PaymentID string `json:"payment_id"`
}

// UpdateOrderPaymentIDData данные команды корреляции для сервиса заказов
type UpdateOrderPaymentIDData struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

// UpdatePaymentOrderIDData данные команды корреляции для сервиса платежей
type UpdatePaymentOrderIDData struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

// ReplyKind закрытый набор видов ответов участников
type ReplyKind int

const (
	ReplyStockReduced ReplyKind = iota
	ReplyPaymentTaken
	ReplyOrderCreated
)

// Reply типизированный ответ участника из orchestration_queue
type Reply struct {
	Kind          ReplyKind
	Event         string
	TransactionID string
	Status        string
	// PaymentID заполнен только для успешного take_payment
	PaymentID string
	// OrderID заполнен только для успешного create_order
	OrderID string
}

// Failed сообщает, является ли статус ответа ошибкой участника.
// Ошибкой считается любой статус, содержащий подстроку "error".
func (r Reply) Failed() bool {
	return IsErrorStatus(r.Status)
}
