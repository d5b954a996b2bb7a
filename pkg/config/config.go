package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CommonConfig содержит общую конфигурацию, используемую сервисом оркестрации
type CommonConfig struct {
	HTTP     HTTPConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
}

// HTTPConfig содержит настройки HTTP сервера
type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RabbitMQConfig содержит настройки RabbitMQ
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

// RedisConfig содержит настройки Redis
type RedisConfig struct {
	Host string
	Port string
	DB   int
}

// AuthConfig содержит настройки внешнего сервиса авторизации
type AuthConfig struct {
	Enabled          bool
	BaseURL          string
	CustomerEndpoint string
	VendorEndpoint   string
	AdminEndpoint    string
	Timeout          time.Duration
}

// LoadCommonConfig загружает общую конфигурацию из переменных окружения
func LoadCommonConfig(port string) *CommonConfig {
	// Загружаем переменные окружения из .env файла, если он существует
	godotenv.Load()

	return &CommonConfig{
		HTTP: HTTPConfig{
			Port:         GetEnv("HTTP_PORT", port),
			ReadTimeout:  GetEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: GetEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     GetEnv("RABBITMQ_HOST", "localhost"),
			Port:     GetEnv("RABBITMQ_PORT", "5672"),
			User:     GetEnv("RABBITMQ_USER", "guest"),
			Password: GetEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    GetEnv("RABBITMQ_VHOST", "/"),
		},
		Redis: RedisConfig{
			Host: GetEnv("REDIS_HOST", "localhost"),
			Port: GetEnv("REDIS_PORT", "6379"),
			DB:   GetEnvAsInt("REDIS_DB", 0),
		},
	}
}

// LoadAuthConfig загружает конфигурацию сервиса авторизации из переменных окружения
func LoadAuthConfig() *AuthConfig {
	host := GetEnv("AUTH_SERVER_HOST", "http://localhost")
	port := GetEnv("AUTH_SERVER_PORT", "5206")

	return &AuthConfig{
		Enabled:          GetEnvAsBool("AUTH_ENABLED", false),
		BaseURL:          host + ":" + port,
		CustomerEndpoint: GetEnv("AUTH_CUSTOMER_ENDPOINT", "/customer-policy"),
		VendorEndpoint:   GetEnv("AUTH_VENDOR_ENDPOINT", "/vendor-policy"),
		AdminEndpoint:    GetEnv("AUTH_ADMIN_ENDPOINT", "/admin-policy"),
		Timeout:          GetEnvAsDuration("AUTH_TIMEOUT", 5*time.Second),
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
