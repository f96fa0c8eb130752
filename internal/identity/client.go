// Package identity предоставляет клиент административного API провайдера идентификации.
package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

// Client инкапсулирует HTTP-взаимодействие с провайдером идентификации.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient создаёт клиент для административного API провайдера по указанному адресу.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// DeleteAccount удаляет учётную запись пользователя у провайдера.
// Отсутствие учётной записи (404) считается успехом.
func (c *Client) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("%w: identity client not configured", model.ErrDependencyFailure)
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := fmt.Sprintf("%s/admin/users/%s", base, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w: %w", model.ErrDependencyFailure, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: unexpected status %d: %s", model.ErrDependencyFailure, resp.StatusCode, strings.TrimSpace(string(body)))
}
