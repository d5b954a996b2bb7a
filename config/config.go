package config

import (
	"time"

	pkgconfig "github.com/mvshop/orchestration-service/pkg/config"
)

// Config конфигурация сервиса оркестрации
type Config struct {
	Common *pkgconfig.CommonConfig
	Auth   *pkgconfig.AuthConfig
	// SagaTTL время жизни записей саги в хранилище
	SagaTTL time.Duration
	// ShutdownTimeout максимальное время ожидания остановки потребителя
	// и HTTP сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию сервиса из переменных окружения
func Load() *Config {
	return &Config{
		Common:          pkgconfig.LoadCommonConfig("8080"),
		Auth:            pkgconfig.LoadAuthConfig(),
		SagaTTL:         pkgconfig.GetEnvAsDuration("SAGA_STATE_TTL", 600*time.Second),
		ShutdownTimeout: pkgconfig.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}
