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

// HotelClient talks to the hotel service that owns rooms and restaurant
// tables. Reads go through the resilience wrapper; status writes are
// single-shot because the caller treats them as best-effort.
type HotelClient struct {
	baseURL    string
	httpClient *http.Client
	caller     *resilience.Caller
}

func NewHotelClient(baseURL string, httpClient *http.Client, caller *resilience.Caller) *HotelClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HotelClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		caller:     caller,
	}
}

type resourcePayload struct {
	ID           string          `json:"id"`
	RoomNumber   string          `json:"roomNumber,omitempty"`
	TableNumber  string          `json:"tableNumber,omitempty"`
	PricePerUnit decimal.Decimal `json:"pricePerNight"`
	Fee          decimal.Decimal `json:"reservationFee"`
	Capacity     int             `json:"capacity"`
	Status       string          `json:"status"`
}

func (c *HotelClient) GetRoom(ctx context.Context, id string) (*registry.Resource, error) {
	return c.getResource(ctx, "rooms", id)
}

func (c *HotelClient) GetTable(ctx context.Context, id string) (*registry.Resource, error) {
	return c.getResource(ctx, "tables", id)
}

func (c *HotelClient) getResource(ctx context.Context, kind, id string) (*registry.Resource, error) {
	var payload resourcePayload

	err := c.caller.Do(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/hotel/%s/%s", kind, url.PathEscape(id)), &payload)
	})
	if err != nil {
		return nil, err
	}

	resource := &registry.Resource{
		ID:           payload.ID,
		Number:       payload.RoomNumber,
		PricePerUnit: payload.PricePerUnit,
		Capacity:     payload.Capacity,
		Status:       registry.Status(payload.Status),
	}
	if kind == "tables" {
		resource.Number = payload.TableNumber
		resource.PricePerUnit = payload.Fee
	}

	return resource, nil
}

func (c *HotelClient) IsRoomAvailable(ctx context.Context, id string) (bool, error) {
	return c.isAvailable(ctx, "rooms", id)
}

func (c *HotelClient) IsTableAvailable(ctx context.Context, id string) (bool, error) {
	return c.isAvailable(ctx, "tables", id)
}

func (c *HotelClient) isAvailable(ctx context.Context, kind, id string) (bool, error) {
	var available bool

	err := c.caller.Do(ctx, func(ctx context.Context) error {
		return c.getJSON(ctx, fmt.Sprintf("/api/hotel/%s/%s/availability", kind, url.PathEscape(id)), &available)
	})
	if err != nil {
		return false, err
	}

	return available, nil
}

func (c *HotelClient) SetRoomStatus(ctx context.Context, id string, status registry.Status) error {
	return c.setStatus(ctx, "rooms", id, status)
}

func (c *HotelClient) SetTableStatus(ctx context.Context, id string, status registry.Status) error {
	return c.setStatus(ctx, "tables", id, status)
}

func (c *HotelClient) setStatus(ctx context.Context, kind, id string, status registry.Status) error {
	return c.caller.DoOnce(ctx, func(ctx context.Context) error {
		endpoint := fmt.Sprintf("%s/api/hotel/%s/%s/status?status=%s",
			c.baseURL, kind, url.PathEscape(id), url.QueryEscape(string(status)))

		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to build status request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to update %s status: %w", kind, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("failed to update %s status: %s", kind, resp.Status)
		}

		return nil
	})
}

func (c *HotelClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hotel service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// not a transient failure, do not retry
		return backoff.Permanent(fault.NotFound("resource", path))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hotel service returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode hotel service response: %w", err)
	}

	return nil
}
