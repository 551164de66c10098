package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "a-token-of-plausible-length-0123456789"

func tokenEndpoint(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Authenticator {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return NewAuthenticator(PasswordDetails{
		TokenURL: server.URL + "/realms/event-ticketing/protocol/openid-connect/token",
		ClientID: "login-testing",
		Scopes:   []string{"internal-api"},
	})
}

func TestAcquire_SendsPasswordGrant(t *testing.T) {
	authenticator := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "login-testing", r.PostForm.Get("client_id"))
		assert.Equal(t, "internal-api", r.PostForm.Get("scope"))
		assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":300}`, testToken)
	})

	credentials, err := authenticator.Acquire(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, testToken, credentials.AccessToken)
	assert.True(t, credentials.Valid())
}

func TestAcquire_BadCredentials(t *testing.T) {
	authenticator := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	})

	_, err := authenticator.Acquire(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "alice@example.com", authErr.Username)
}

func TestAcquire_RejectsImplausiblyShortToken(t *testing.T) {
	authenticator := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"short","token_type":"Bearer"}`)
	})

	_, err := authenticator.Acquire(context.Background(), "alice@example.com", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "implausibly short")
}

func TestTokenCache_ReusesValidToken(t *testing.T) {
	grants := 0
	authenticator := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		grants++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer","expires_in":300}`, testToken)
	})

	cache := NewTokenCache(authenticator, "alice@example.com", "secret")
	for i := 0; i < 3; i++ {
		token, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, testToken, token)
	}
	assert.Equal(t, 1, grants)
}

func TestTokenCache_RefreshesExpiredToken(t *testing.T) {
	grants := 0
	authenticator := tokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		grants++
		w.Header().Set("Content-Type", "application/json")
		// expires_in below the refresh leeway, so the token is already stale
		fmt.Fprintf(w, `{"access_token":"%s-%d","token_type":"Bearer","expires_in":1}`, testToken, grants)
	})

	cache := NewTokenCache(authenticator, "alice@example.com", "secret")
	first, err := cache.Token(context.Background())
	require.NoError(t, err)
	second, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, grants)
	assert.True(t, strings.HasPrefix(first, testToken))
	assert.NotEqual(t, first, second)
}

func TestCredentials_Valid(t *testing.T) {
	assert.False(t, (*Credentials)(nil).Valid())
	assert.False(t, (&Credentials{AccessToken: ""}).Valid())
	expired := &Credentials{AccessToken: testToken, ExpiresAt: time.Now().Add(-time.Minute)}
	assert.False(t, expired.Valid())
	live := &Credentials{AccessToken: testToken, ExpiresAt: time.Now().Add(time.Minute)}
	assert.True(t, live.Valid())
}
