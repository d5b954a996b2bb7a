package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvshop/orchestration-service/internal/entity"
	"github.com/mvshop/orchestration-service/pkg/errors"
)

// Orchestrator интерфейс координатора саги, используемый HTTP обработчиками
type Orchestrator interface {
	StartOrderSaga(ctx context.Context, req *entity.CreateOrderRequest) (string, error)
	CancelOrderSaga(ctx context.Context, orderID string) error
}

// OrderHandler обработчик HTTP запросов ингресса заказов
type OrderHandler struct {
	orchestrator Orchestrator
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orchestrator Orchestrator) *OrderHandler {
	return &OrderHandler{orchestrator: orchestrator}
}

// RegisterRoutes регистрирует маршруты ингресса.
// authMiddleware применяется только к операциям над заказами.
func (h *OrderHandler) RegisterRoutes(router gin.IRouter, authMiddleware gin.HandlerFunc) {
	router.GET("/health", h.Health)

	orders := router.Group("/orders")
	if authMiddleware != nil {
		orders.Use(authMiddleware)
	}
	{
		orders.POST("/create_order", h.CreateOrder)
		orders.POST("/cancel_order", h.CancelOrder)
	}
}

// CreateOrder принимает запрос на создание заказа и запускает сагу.
// Ответ подтверждает только запуск: завершение саги асинхронное.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse("Некорректное тело запроса", err.Error()))
		return
	}

	if _, err := h.orchestrator.StartOrderSaga(c.Request.Context(), &req); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, entity.CreateOrderResponse{
		Status:  "success",
		Message: "Order creation started",
		Data:    nil,
	})
}

// CancelOrder принимает запрос на отмену заказа по его идентификатору
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse("Не указан параметр order_id", nil))
		return
	}

	if err := h.orchestrator.CancelOrderSaga(c.Request.Context(), orderID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Order cancellation started"})
}

// Health проверка живости сервиса
func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
