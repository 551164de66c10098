package ticketly

import (
	"context"
	"fmt"

	"github.com/ticketly/system-tests/pkg/client/rest"
)

// CommandClient wraps the command-side (write) REST API. Every call takes an
// explicit bearer token: actor identity is a per-call decision, not client
// state, because teardown authorization rules differ per deployment.
type CommandClient struct {
	rest    *rest.Client
	baseURL string
}

func NewCommandClient(restClient *rest.Client, baseURL string) *CommandClient {
	return &CommandClient{rest: restClient, baseURL: baseURL}
}

func (c *CommandClient) CreateOrganization(ctx context.Context, token, name string) (*Organization, error) {
	organization := &Organization{}
	err := c.rest.PostJSON(ctx, c.baseURL+"/v1/organizations", token, map[string]string{"name": name}, organization)
	if err != nil {
		return nil, err
	}
	return organization, nil
}

func (c *CommandClient) DeleteOrganization(ctx context.Context, token, organizationID string) error {
	return c.rest.Delete(ctx, fmt.Sprintf("%s/v1/organizations/%s", c.baseURL, organizationID), token)
}

func (c *CommandClient) ListCategories(ctx context.Context, token string) ([]Category, error) {
	var categories []Category
	err := c.rest.GetJSON(ctx, c.baseURL+"/v1/categories", token, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateEvent uploads the payload as a multipart request, optionally
// attaching a cover image.
func (c *CommandClient) CreateEvent(ctx context.Context, token string, payload *EventPayload, imagePath string) (*Event, error) {
	data, err := c.rest.Multipart(ctx, c.baseURL+"/v1/events", token, payload, imagePath)
	if err != nil {
		return nil, err
	}
	event := &Event{}
	if err := unmarshalResponse(data, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (c *CommandClient) ApproveEvent(ctx context.Context, token, eventID string) error {
	return c.rest.PostJSON(ctx, fmt.Sprintf("%s/v1/events/%s/approve", c.baseURL, eventID), token, nil, nil)
}

func (c *CommandClient) DeleteEvent(ctx context.Context, token, eventID string) error {
	return c.rest.Delete(ctx, fmt.Sprintf("%s/v1/events/%s", c.baseURL, eventID), token)
}

func (c *CommandClient) SetSessionStatus(ctx context.Context, token, sessionID, status string) error {
	url := fmt.Sprintf("%s/v1/sessions/%s/status", c.baseURL, sessionID)
	return c.rest.PutJSON(ctx, url, token, map[string]string{"status": status})
}
