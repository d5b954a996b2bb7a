package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mvshop/orchestration-service/config"
	"github.com/mvshop/orchestration-service/internal/controller/httpapi"
	rabbitmqctrl "github.com/mvshop/orchestration-service/internal/controller/rabbitmq"
	"github.com/mvshop/orchestration-service/internal/repo"
	"github.com/mvshop/orchestration-service/internal/usecase"
	"github.com/mvshop/orchestration-service/pkg/auth"
	"github.com/mvshop/orchestration-service/pkg/database"
	"github.com/mvshop/orchestration-service/pkg/errors"
	"github.com/mvshop/orchestration-service/pkg/messaging"
	"github.com/mvshop/orchestration-service/pkg/rabbitmq"
	"github.com/mvshop/orchestration-service/pkg/saga"
)

// App представляет приложение сервиса оркестрации саг
type App struct {
	config     *config.Config
	logger     *log.Logger
	redis      *redis.Client
	broker     *rabbitmq.RabbitMQ
	consumer   *rabbitmqctrl.OrchestrationConsumer
	httpServer *http.Server
}

// NewApp создает и собирает приложение: подключения, хранилище,
// оркестратор, потребителя очереди ответов и HTTP сервер
func NewApp(cfg *config.Config) (*App, error) {
	logger := log.New(os.Stdout, "[SagaOrchestrator] ", log.LstdFlags)

	redisClient, err := database.NewRedisClient(cfg.Common.Redis)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	broker, err := messaging.InitRabbitMQ(cfg.Common.RabbitMQ)
	if err != nil {
		database.CloseRedis(redisClient)
		return nil, fmt.Errorf("ошибка подключения к RabbitMQ: %w", err)
	}

	queues := []string{
		saga.ProductsQueue,
		saga.OrdersQueue,
		saga.PaymentQueue,
		saga.OrchestrationQueue,
	}
	if err := messaging.SetupQueues(broker, queues); err != nil {
		broker.Close()
		database.CloseRedis(redisClient)
		return nil, fmt.Errorf("ошибка объявления очередей: %w", err)
	}

	store := repo.NewRedisSagaStore(redisClient, cfg.SagaTTL)
	orchestrator := usecase.NewSagaOrchestrator(store, broker, nil)
	consumer := rabbitmqctrl.NewOrchestrationConsumer(broker, orchestrator, nil)

	authClient := auth.NewClient(*cfg.Auth)
	authMiddleware := auth.NewAuthMiddleware(authClient, cfg.Auth.Enabled)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(errors.RecoveryMiddleware())
	router.Use(errors.ErrorMiddleware())
	router.NoRoute(errors.NotFoundHandler())
	router.NoMethod(errors.MethodNotAllowedHandler())

	httpapi.NewOrderHandler(orchestrator).RegisterRoutes(router, authMiddleware.AuthRequired())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Common.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.Common.HTTP.ReadTimeout,
		WriteTimeout: cfg.Common.HTTP.WriteTimeout,
	}

	return &App{
		config:     cfg,
		logger:     logger,
		redis:      redisClient,
		broker:     broker,
		consumer:   consumer,
		httpServer: httpServer,
	}, nil
}

// Run запускает потребителя очереди ответов и HTTP сервер и блокируется
// до сигнала завершения
func (a *App) Run() error {
	if err := a.consumer.Start(); err != nil {
		return fmt.Errorf("ошибка запуска потребителя: %w", err)
	}

	httpErrors := make(chan error, 1)
	go func() {
		a.logger.Printf("HTTP сервер запущен на %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-httpErrors:
		a.Shutdown()
		return fmt.Errorf("ошибка HTTP сервера: %w", err)
	case sig := <-quit:
		a.logger.Printf("Получен сигнал %s, завершение работы", sig)
	}

	return a.Shutdown()
}

// Shutdown останавливает приложение: сначала потребителя, чтобы не терять
// сообщения в обработке, затем HTTP сервер и соединения
func (a *App) Shutdown() error {
	errs := errors.NewErrorGroup()

	errs.AddPrefix(a.consumer.Stop(a.config.ShutdownTimeout), "остановка потребителя")

	ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	errs.AddPrefix(a.httpServer.Shutdown(ctx), "остановка HTTP сервера")

	errs.AddPrefix(a.broker.Close(), "закрытие соединения с RabbitMQ")
	errs.AddPrefix(database.CloseRedis(a.redis), "закрытие соединения с Redis")

	if errs.HasErrors() {
		return fmt.Errorf("ошибки при завершении работы: %s", errs.Error())
	}

	a.logger.Println("Сервис остановлен")
	return nil
}
