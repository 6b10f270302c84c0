// Package client is the HTTP client the dashboard processes use to
// reach the API service. The kitchen and driver modes run in their own
// processes; routing every read and transition through the API keeps
// one store authority, so two operators racing over the same order get
// one winner and one conflict instead of two winners.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"el-sabor/internal/lifecycle"
	"el-sabor/internal/logger"
	"el-sabor/internal/models"
	"el-sabor/internal/store"
)

// ErrRoleNotAllowed is returned when the API refuses a transition for
// the acting role
var ErrRoleNotAllowed = errors.New("role not allowed for this transition")

// Client talks to the order endpoints of the API service. It
// implements the order-service surface the dashboards poll.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger
}

// New creates a client for the API at baseURL
func New(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  log,
	}
}

// List fetches all orders, newest first
func (c *Client) List(ctx context.Context) ([]models.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var orders []models.Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus asks the API to move an order to the next status on
// behalf of a role. Conflicts mean another operator already moved the
// order; they surface as lifecycle.ErrAlreadyTransitioned so the
// dashboard refreshes instead of retrying.
func (c *Client) UpdateStatus(ctx context.Context, id string, role lifecycle.Role, next models.OrderStatus) (*models.Order, error) {
	body, err := json.Marshal(map[string]string{"status": string(next)})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/orders/%s/status", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", string(role))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach API: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var updated models.Order
		if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		return &updated, nil
	case http.StatusNotFound:
		return nil, store.ErrNotFound
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrAlreadyTransitioned, c.errorMessage(resp))
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrRoleNotAllowed, c.errorMessage(resp))
	default:
		return nil, c.apiError(resp)
	}
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (c *Client) errorMessage(resp *http.Response) string {
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
		return resp.Status
	}
	return envelope.Error
}

func (c *Client) apiError(resp *http.Response) error {
	return fmt.Errorf("api error (%d): %s", resp.StatusCode, c.errorMessage(resp))
}
