package entity

// OrderSagaStatus представляет возможные статусы саги заказа
type OrderSagaStatus string

// OrderCreated и Compensating переходные: обработчик проходит их внутри
// одного шага и сохраняет сагу сразу в следующем статусе. Объявлены для
// полноты набора статусов, которым оперируют участники и отчеты.
const (
	OrderSagaStatusPending      OrderSagaStatus = "Pending"
	OrderSagaStatusStockReduced OrderSagaStatus = "StockReduced"
	OrderSagaStatusPaymentTaken OrderSagaStatus = "PaymentTaken"
	OrderSagaStatusOrderCreated OrderSagaStatus = "OrderCreated"
	OrderSagaStatusCompleted    OrderSagaStatus = "Completed"
	OrderSagaStatusCompensating OrderSagaStatus = "Compensating"
	OrderSagaStatusCanceled     OrderSagaStatus = "Canceled"
	OrderSagaStatusFailed       OrderSagaStatus = "Failed"
)

// IsTerminal возвращает true, если сага в конечном статусе: дальнейшие
// ответы участников для нее подтверждаются и отбрасываются
func (s OrderSagaStatus) IsTerminal() bool {
	return s == OrderSagaStatusCompleted || s == OrderSagaStatusCanceled || s == OrderSagaStatusFailed
}

// OrderSagaState представляет состояние саги заказа, хранящееся в Redis
// под ключом order_saga:<transaction_id>
type OrderSagaState struct {
	TransactionID   string          `json:"transaction_id"`
	UserEmail       string          `json:"user_email"`
	VendorEmail     string          `json:"vendor_email"`
	DeliveryAddress string          `json:"delivery_address"`
	Description     string          `json:"description,omitempty"`
	Status          OrderSagaStatus `json:"status"`
	Items           []OrderItem     `json:"items"`
	PaymentMethod   string          `json:"payment_method"`
	// PaymentID заполняется после успешного ответа take_payment
	PaymentID string `json:"payment_id,omitempty"`
	// OrderID заполняется после успешного ответа create_order
	OrderID string `json:"order_id,omitempty"`
}

// TotalPrice возвращает сумму заказа по позициям
func (s *OrderSagaState) TotalPrice() float64 {
	total := 0.0
	for _, item := range s.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// ProductQuantity количество товара, запрошенное у сервиса склада
type ProductQuantity struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ProductSagaState представляет состояние саги по товарам, хранящееся в Redis
// под ключом product_saga:<transaction_id>. Фиксирует, что именно было
// запрошено у сервиса склада, чтобы компенсация была однозначной.
type ProductSagaState struct {
	TransactionID string            `json:"transaction_id"`
	Products      []ProductQuantity `json:"products"`
}

// PaymentSagaStatus представляет возможные статусы платежа в саге
type PaymentSagaStatus string

const (
	PaymentStatusPending   PaymentSagaStatus = "Pending"
	PaymentStatusSuccess   PaymentSagaStatus = "Success"
	PaymentStatusFailed    PaymentSagaStatus = "Failed"
	PaymentStatusCancelled PaymentSagaStatus = "Cancelled"
)

// PaymentSagaState представляет состояние саги платежа, хранящееся в Redis
// под ключом payment_saga:<transaction_id>
type PaymentSagaState struct {
	TransactionID string `json:"transaction_id"`
	UserEmail     string `json:"user_email"`
	// OrderID заполняется после успешного ответа create_order
	OrderID       string            `json:"order_id,omitempty"`
	Amount        float64           `json:"amount"`
	PaymentMethod string            `json:"payment_method"`
	PaymentStatus PaymentSagaStatus `json:"payment_status"`
}
