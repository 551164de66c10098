package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/rest"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

func browseQueryServer(t *testing.T) (*ticketly.QueryClient, *[]string) {
	t.Helper()
	var requests []string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events/trending", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"evt-1","title":"Jazz Night","status":"APPROVED"}]`)
	})
	mux.HandleFunc("/v1/events/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Jazz Night", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"content":[{"id":"evt-1"}],"totalElements":1}`)
	})
	mux.HandleFunc("/v1/events/evt-1/basic-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"evt-1","title":"Jazz Night","status":"APPROVED"}`)
	})
	mux.HandleFunc("/v1/events/evt-1/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[{"id":"sess-1","status":"ON_SALE"}],"totalElements":1}`)
	})
	mux.HandleFunc("/v1/sessions/sess-1/basic-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"sess-1","status":"ON_SALE"}`)
	})
	mux.HandleFunc("/v1/sessions/sess-1/seating-map", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"layout":{"blocks":[{"rows":[{"seats":[
			{"id":"s-1","status":"AVAILABLE"},
			{"id":"s-2","status":"LOCKED"},
			{"id":"s-3","status":"AVAILABLE"},
			{"id":"s-4","status":"AVAILABLE"},
			{"id":"s-5","status":"AVAILABLE"}
		]}]}]}}`)
	})
	mux.HandleFunc("/internal/v1/sessions/sess-1/seats/validate", func(w http.ResponseWriter, r *http.Request) {
		var request ticketly.SeatValidationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		// at most three available seats are validated, skipping locked ones
		assert.Equal(t, []string{"s-1", "s-3", "s-4"}, request.SeatIDs)
	})
	mux.HandleFunc("/internal/v1/validate-pre-order", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/v1/analytics/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"views":10}`)
	})

	recorder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path)
		mux.ServeHTTP(w, r)
	})
	server := httptest.NewServer(recorder)
	t.Cleanup(server.Close)
	return ticketly.NewQueryClient(rest.NewClient(time.Second), server.URL), &requests
}

func browseUserCache(t *testing.T) *auth.TokenCache {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":300}`, userToken)
	}))
	t.Cleanup(server.Close)
	authenticator := auth.NewAuthenticator(auth.PasswordDetails{TokenURL: server.URL})
	return auth.NewTokenCache(authenticator, "user@example.com", "pw")
}

func TestBrowse_FullJourney(t *testing.T) {
	query, requests := browseQueryServer(t)
	browse := NewBrowse(query, browseUserCache(t))

	require.NoError(t, browse.Run(context.Background(), ""))

	joined := strings.Join(*requests, "\n")
	for _, path := range []string{
		"/v1/events/trending",
		"/v1/events/evt-1/basic-info",
		"/v1/events/search",
		"/v1/events/evt-1/sessions",
		"/v1/sessions/sess-1/basic-info",
		"/v1/sessions/sess-1/seating-map",
		"/internal/v1/sessions/sess-1/seats/validate",
		"/internal/v1/validate-pre-order",
		"/v1/analytics/events/evt-1",
		"/v1/analytics/events/evt-1/sessions",
		"/v1/analytics/events/evt-1/sessions/sess-1",
	} {
		assert.Contains(t, joined, path)
	}
}

func TestBrowse_ExplicitEventSkipsTrendingFallback(t *testing.T) {
	query, _ := browseQueryServer(t)
	browse := NewBrowse(query, browseUserCache(t))
	require.NoError(t, browse.Run(context.Background(), "evt-1"))
}

func TestBrowse_FailsWithoutSeats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/events/trending", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"evt-1","title":"","status":"APPROVED"}]`)
	})
	mux.HandleFunc("/v1/events/evt-1/basic-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"evt-1","title":"","status":"APPROVED"}`)
	})
	mux.HandleFunc("/v1/events/evt-1/sessions", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[{"id":"sess-1","status":"CLOSED"}],"totalElements":1}`)
	})
	mux.HandleFunc("/v1/sessions/sess-1/basic-info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"sess-1","status":"CLOSED"}`)
	})
	mux.HandleFunc("/v1/sessions/sess-1/seating-map", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"layout":{"blocks":[]}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	query := ticketly.NewQueryClient(rest.NewClient(time.Second), server.URL)
	err := NewBrowse(query, browseUserCache(t)).Run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no AVAILABLE seats")
}
