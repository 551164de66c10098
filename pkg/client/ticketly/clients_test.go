package ticketly

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketly/system-tests/pkg/client/rest"
)

func newTestClient(t *testing.T, handler http.Handler) (*rest.Client, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return rest.NewClient(time.Second), server.URL
}

func TestCommandClient_CreateOrganization(t *testing.T) {
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/organizations", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Acme Events"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"org-1","name":"Acme Events"}`)
	}))

	organization, err := NewCommandClient(restClient, url).
		CreateOrganization(context.Background(), "tok", "Acme Events")
	require.NoError(t, err)
	assert.Equal(t, "org-1", organization.ID)
}

func TestCommandClient_ApproveAndDelete(t *testing.T) {
	var paths []string
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
	}))

	command := NewCommandClient(restClient, url)
	require.NoError(t, command.ApproveEvent(context.Background(), "tok", "e-1"))
	require.NoError(t, command.DeleteEvent(context.Background(), "tok", "e-1"))
	require.NoError(t, command.DeleteOrganization(context.Background(), "tok", "org-1"))
	require.NoError(t, command.SetSessionStatus(context.Background(), "tok", "sess-1", SessionOnSale))

	assert.Equal(t, []string{
		"POST /v1/events/e-1/approve",
		"DELETE /v1/events/e-1",
		"DELETE /v1/organizations/org-1",
		"PUT /v1/sessions/sess-1/status",
	}, paths)
}

func TestQueryClient_EventSessions_UnwrapsPage(t *testing.T) {
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/events/e-1/sessions", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("pageable.page"))
		fmt.Fprint(w, `{"content":[{"id":"sess-1","status":"UPCOMING"}],"totalElements":1}`)
	}))

	sessions, err := NewQueryClient(restClient, url).EventSessions(context.Background(), "tok", "e-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].ID)
}

func TestQueryClient_SeatingMap(t *testing.T) {
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/sessions/sess-1/seating-map", r.URL.Path)
		fmt.Fprint(w, `{"layout":{"blocks":[{"name":"seating","rows":[{"label":"A","seats":[{"id":"s-1","status":"AVAILABLE"}]}]}]}}`)
	}))

	seatingMap, err := NewQueryClient(restClient, url).SeatingMap(context.Background(), "tok", "sess-1")
	require.NoError(t, err)
	seat, ok := seatingMap.FirstAvailableSeat()
	require.True(t, ok)
	assert.Equal(t, "s-1", seat.ID)
}

func TestOrderClient_PlaceOrder(t *testing.T) {
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"event_id":"e-1","session_id":"sess-1","seat_ids":["s-1"]}`, string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"order_id":"ord-1"}`)
	}))

	response, err := NewOrderClient(restClient, url).PlaceOrder(context.Background(), "tok",
		OrderRequest{EventID: "e-1", SessionID: "sess-1", SeatIDs: []string{"s-1"}})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", response.OrderID)
}

func TestOrderClient_TryPlaceOrder_CarriesRejectionStatus(t *testing.T) {
	restClient, url := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"seat taken"}`)
	}))

	outcome, err := NewOrderClient(restClient, url).TryPlaceOrder(context.Background(), "tok",
		OrderRequest{EventID: "e-1", SessionID: "sess-1", SeatIDs: []string{"s-1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, outcome.Status)
	assert.Empty(t, outcome.OrderID)
}
