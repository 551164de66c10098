package ticketly

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/ticketly/system-tests/pkg/client/rest"
)

func unmarshalResponse(data []byte, out interface{}) error {
	return errors.Wrap(json.Unmarshal(data, out), "failed to decode service response")
}

// QueryClient wraps the query-side (read) REST API, i.e. the asynchronously
// updated projection of command-side state.
type QueryClient struct {
	rest    *rest.Client
	baseURL string
}

func NewQueryClient(restClient *rest.Client, baseURL string) *QueryClient {
	return &QueryClient{rest: restClient, baseURL: baseURL}
}

func (c *QueryClient) EventBasicInfo(ctx context.Context, token, eventID string) (*Event, error) {
	event := &Event{}
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/events/%s/basic-info", c.baseURL, eventID), token, event)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (c *QueryClient) EventSessions(ctx context.Context, token, eventID string) ([]Session, error) {
	page := &SessionPage{}
	url := fmt.Sprintf("%s/v1/events/%s/sessions?pageable.page=0&pageable.size=10", c.baseURL, eventID)
	if err := c.rest.GetJSON(ctx, url, token, page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (c *QueryClient) SessionBasicInfo(ctx context.Context, token, sessionID string) (*Session, error) {
	session := &Session{}
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/sessions/%s/basic-info", c.baseURL, sessionID), token, session)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *QueryClient) SeatingMap(ctx context.Context, token, sessionID string) (*SeatingMap, error) {
	seatingMap := &SeatingMap{}
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/sessions/%s/seating-map", c.baseURL, sessionID), token, seatingMap)
	if err != nil {
		return nil, err
	}
	return seatingMap, nil
}

func (c *QueryClient) TrendingEvents(ctx context.Context, token string, limit int) ([]Event, error) {
	var events []Event
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/events/trending?limit=%d", c.baseURL, limit), token, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *QueryClient) SearchEvents(ctx context.Context, token, query string, page, size int) (*EventPage, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("pageable.page", fmt.Sprintf("%d", page))
	values.Set("pageable.size", fmt.Sprintf("%d", size))
	result := &EventPage{}
	err := c.rest.GetJSON(ctx, c.baseURL+"/v1/events/search?"+values.Encode(), token, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *QueryClient) ValidateSeats(ctx context.Context, token string, request SeatValidationRequest) error {
	url := fmt.Sprintf("%s/internal/v1/sessions/%s/seats/validate", c.baseURL, request.SessionID)
	return c.rest.PostJSON(ctx, url, token, request, nil)
}

func (c *QueryClient) ValidatePreOrder(ctx context.Context, token string, request SeatValidationRequest) error {
	return c.rest.PostJSON(ctx, c.baseURL+"/internal/v1/validate-pre-order", token, request, nil)
}

func (c *QueryClient) EventAnalytics(ctx context.Context, token, eventID string) (Analytics, error) {
	var analytics Analytics
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/analytics/events/%s", c.baseURL, eventID), token, &analytics)
	return analytics, err
}

func (c *QueryClient) EventSessionAnalytics(ctx context.Context, token, eventID string) (Analytics, error) {
	var analytics Analytics
	err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/v1/analytics/events/%s/sessions", c.baseURL, eventID), token, &analytics)
	return analytics, err
}

func (c *QueryClient) SessionAnalytics(ctx context.Context, token, eventID, sessionID string) (Analytics, error) {
	var analytics Analytics
	url := fmt.Sprintf("%s/v1/analytics/events/%s/sessions/%s", c.baseURL, eventID, sessionID)
	err := c.rest.GetJSON(ctx, url, token, &analytics)
	return analytics, err
}
