package entity

// Допустимые способы оплаты
const (
	PaymentMethodCreditCard     = "Credit Card"
	PaymentMethodDebitCard      = "Debit Card"
	PaymentMethodCashOnDelivery = "Cash on Delivery"
)

// IsValidPaymentMethod проверяет способ оплаты на принадлежность допустимому набору
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// OrderItem позиция заказа
type OrderItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

// CreateOrderRequest запрос на создание заказа
type CreateOrderRequest struct {
	UserEmail       string      `json:"user_email" binding:"required,email"`
	VendorEmail     string      `json:"vendor_email" binding:"required,email"`
	DeliveryAddress string      `json:"delivery_address" binding:"required"`
	Description     string      `json:"description"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string      `json:"payment_method" binding:"required"`
}

// TotalPrice возвращает сумму заказа по позициям запроса
func (r *CreateOrderRequest) TotalPrice() float64 {
	total := 0.0
	for _, item := range r.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// CreateOrderResponse ответ на запрос создания заказа.
// Обработка заказа асинхронная: ответ подтверждает только запуск саги.
type CreateOrderResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
