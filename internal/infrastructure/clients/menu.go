package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v3"
	"github.com/shopspring/decimal"

	"hotelops/internal/domain/registry"
	"hotelops/internal/fault"
	"hotelops/internal/infrastructure/resilience"
)

// MenuClient talks to the restaurant service that owns menu items.
type MenuClient struct {
	baseURL    string
	httpClient *http.Client
	caller     *resilience.Caller
}

func NewMenuClient(baseURL string, httpClient *http.Client, caller *resilience.Caller) *MenuClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MenuClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		caller:     caller,
	}
}

type menuItemPayload struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

func (c *MenuClient) IsItemAvailable(ctx context.Context, id string) (bool, error) {
	var available bool

	err := c.caller.Do(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/restaurant/menu/%s/available", url.PathEscape(id)), &available)
	})
	if err != nil {
		return false, err
	}

	return available, nil
}

func (c *MenuClient) GetMenuItem(ctx context.Context, id string) (*registry.MenuItem, error) {
	var payload menuItemPayload

	err := c.caller.Do(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/restaurant/menu/%s", url.PathEscape(id)), &payload)
	})
	if err != nil {
		return nil, err
	}

	return &registry.MenuItem{
		ID:        payload.ID,
		Name:      payload.Name,
		Price:     payload.Price,
		Available: payload.Available,
	}, nil
}

func (c *MenuClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("restaurant service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return backoff.Permanent(fault.NotFound("menu item", path))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("restaurant service returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode restaurant service response: %w", err)
	}

	return nil
}
