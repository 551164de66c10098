package ticketly

import (
	"context"
	"encoding/json"

	"github.com/ticketly/system-tests/pkg/client/rest"
)

// OrderClient wraps the order-placement endpoint.
type OrderClient struct {
	rest    *rest.Client
	baseURL string
}

func NewOrderClient(restClient *rest.Client, baseURL string) *OrderClient {
	return &OrderClient{rest: restClient, baseURL: baseURL}
}

// PlaceOrder places an order and fails on any non-2xx response. This is the
// sequential-protocol entry point, where a rejection is unexpected.
func (c *OrderClient) PlaceOrder(ctx context.Context, token string, request OrderRequest) (*OrderResponse, error) {
	response := &OrderResponse{}
	if err := c.rest.PostJSON(ctx, c.baseURL, token, request, response); err != nil {
		return nil, err
	}
	return response, nil
}

// OrderOutcome captures the HTTP status of an order attempt without treating
// rejections as errors. Contention scenarios measure rejections rather than
// failing on them.
type OrderOutcome struct {
	Status  int
	OrderID string
	Body    string
}

// TryPlaceOrder places an order and folds any HTTP response, rejection or
// not, into the outcome. Only transport failures are returned as errors.
func (c *OrderClient) TryPlaceOrder(ctx context.Context, token string, request OrderRequest) (*OrderOutcome, error) {
	status, data, err := c.rest.PostForStatus(ctx, c.baseURL, token, request)
	if err != nil {
		return nil, err
	}

	outcome := &OrderOutcome{Status: status, Body: string(data)}
	if status >= 200 && status < 300 {
		response := &OrderResponse{}
		if err := json.Unmarshal(data, response); err == nil {
			outcome.OrderID = response.OrderID
		}
	}
	return outcome, nil
}
