package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"courier-console/internal/config"
	"courier-console/internal/courier-service/core/domain/dto"
	"courier-console/internal/courier-service/core/domain/model"
	"courier-console/internal/courier-service/core/myerrors"
	"courier-console/internal/courier-service/core/ports/driven"
	"courier-console/internal/mylogger"
)

// Client talks to the delivery backend's REST surface with the agent's
// bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	log     mylogger.Logger
}

var _ driven.IBackend = (*Client)(nil)

func NewClient(cfg *config.Backendconfig, token string, log mylogger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		log: log,
	}
}

func (c *Client) FetchConfirmedOrders(ctx context.Context) ([]model.Order, error) {
	status, data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/confirmed-orders", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", myerrors.ErrBackendUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, c.statusError(status, data)
	}

	var response dto.ConfirmedOrdersResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("unmarshaling confirmed orders: %w", err)
	}
	return response.Orders, nil
}

func (c *Client) AcceptOrder(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/api/v1/confirmed-orders/%s/accept", orderID)
	status, data, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", myerrors.ErrBackendUnavailable, err)
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return myerrors.ErrOrderTaken
	case http.StatusNotFound:
		return myerrors.ErrOrderNotFound
	default:
		return c.statusError(status, data)
	}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	status, data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/orders/"+orderID, nil)
	if err != nil {
		return model.Order{}, fmt.Errorf("%w: %v", myerrors.ErrBackendUnavailable, err)
	}
	if status == http.StatusNotFound {
		return model.Order{}, myerrors.ErrOrderNotFound
	}
	if status != http.StatusOK {
		return model.Order{}, c.statusError(status, data)
	}

	var response dto.OrderResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return model.Order{}, fmt.Errorf("unmarshaling order: %w", err)
	}
	if response.Order == nil {
		return model.Order{}, myerrors.ErrOrderNotFound
	}
	return *response.Order, nil
}

func (c *Client) GetRestaurant(ctx context.Context, restaurantID string) (model.Restaurant, error) {
	status, data, err := c.doRequest(ctx, http.MethodGet, "/api/v1/restaurants/"+restaurantID, nil)
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("%w: %v", myerrors.ErrBackendUnavailable, err)
	}
	if status != http.StatusOK {
		return model.Restaurant{}, c.statusError(status, data)
	}

	var response dto.RestaurantResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return model.Restaurant{}, fmt.Errorf("unmarshaling restaurant: %w", err)
	}
	if response.Restaurant == nil {
		return model.Restaurant{}, fmt.Errorf("restaurant %s missing from response", restaurantID)
	}
	return *response.Restaurant, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, data, nil
}

func (c *Client) statusError(status int, data []byte) error {
	var errResp dto.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("backend returned %d: %s", status, errResp.Error)
	}
	return fmt.Errorf("backend returned %d", status)
}
