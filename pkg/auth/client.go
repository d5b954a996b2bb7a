package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mvshop/orchestration-service/pkg/config"
)

// TokenValidator проверяет bearer-токен через внешний сервис авторизации
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Client представляет HTTP клиент для работы с сервисом авторизации.
// Сервис авторизации проверяет токен по ролевым эндпоинтам
// (customer/vendor/admin); оркестратор сам содержимое токена не разбирает.
type Client struct {
	baseURL          string
	customerEndpoint string
	vendorEndpoint   string
	adminEndpoint    string
	httpClient       *http.Client
}

func NewClient(cfg config.AuthConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:          cfg.BaseURL,
		customerEndpoint: cfg.CustomerEndpoint,
		vendorEndpoint:   cfg.VendorEndpoint,
		adminEndpoint:    cfg.AdminEndpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// authenticate отправляет токен на указанный ролевой эндпоинт
func (c *Client) authenticate(ctx context.Context, endpoint, token string) error {
	url := c.baseURL + endpoint

	reqBody := map[string]string{
		"token": token,
	}

	reqBodyJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("ошибка при маршалинге запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBodyJSON))
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка при выполнении запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("неуспешный ответ от сервиса авторизации: %s", resp.Status)
	}

	return nil
}

// AuthenticateCustomer проверяет токен по политике покупателя
func (c *Client) AuthenticateCustomer(ctx context.Context, token string) error {
	return c.authenticate(ctx, c.customerEndpoint, token)
}

// AuthenticateVendor проверяет токен по политике продавца
func (c *Client) AuthenticateVendor(ctx context.Context, token string) error {
	return c.authenticate(ctx, c.vendorEndpoint, token)
}

// AuthenticateAdmin проверяет токен по политике администратора
func (c *Client) AuthenticateAdmin(ctx context.Context, token string) error {
	return c.authenticate(ctx, c.adminEndpoint, token)
}

// Authenticate проверяет токен по всем политикам по очереди и возвращает
// первую подошедшую роль
func (c *Client) Authenticate(ctx context.Context, token string) (string, error) {
	if err := c.AuthenticateCustomer(ctx, token); err == nil {
		return "customer", nil
	}
	if err := c.AuthenticateVendor(ctx, token); err == nil {
		return "vendor", nil
	}
	if err := c.AuthenticateAdmin(ctx, token); err == nil {
		return "admin", nil
	}
	return "", fmt.Errorf("токен не прошел ни одну политику авторизации")
}
