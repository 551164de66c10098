package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// minTokenLength guards against identity providers that answer 200 with an
// empty or truncated token body.
const minTokenLength = 20

// expiryLeeway is subtracted from the reported expiry so a token is refreshed
// shortly before the provider would start rejecting it.
const expiryLeeway = 30 * time.Second

type AuthenticationError struct {
	Username string
	Err      error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Username, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

type Credentials struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (c *Credentials) Valid() bool {
	return c != nil && c.AccessToken != "" && time.Now().Before(c.ExpiresAt)
}

// PasswordDetails identifies a confidential-less client performing a
// resource-owner password grant against a Keycloak realm token endpoint.
type PasswordDetails struct {
	TokenURL string
	ClientID string
	Scopes   []string
}

type Authenticator struct {
	details PasswordDetails
}

func NewAuthenticator(details PasswordDetails) *Authenticator {
	return &Authenticator{details: details}
}

// Acquire performs the password grant and returns bearer credentials. There
// is no retry: a failed grant is fatal to the calling scenario.
func (a *Authenticator) Acquire(ctx context.Context, username, password string) (*Credentials, error) {
	authConfig := &oauth2.Config{
		ClientID: a.details.ClientID,
		Scopes:   a.details.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.details.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := authConfig.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, &AuthenticationError{Username: username, Err: err}
	}
	if len(token.AccessToken) < minTokenLength {
		return nil, &AuthenticationError{
			Username: username,
			Err:      errors.Errorf("received implausibly short token (%d chars)", len(token.AccessToken)),
		}
	}

	expiresAt := token.Expiry
	if !expiresAt.IsZero() {
		expiresAt = expiresAt.Add(-expiryLeeway)
	}
	return &Credentials{AccessToken: token.AccessToken, ExpiresAt: expiresAt}, nil
}

// TokenCache lazily acquires and refreshes credentials for a single actor
// identity. Each concurrent actor owns its cache; caches are never shared.
type TokenCache struct {
	authenticator *Authenticator
	username      string
	password      string
	credentials   *Credentials
}

func NewTokenCache(authenticator *Authenticator, username, password string) *TokenCache {
	return &TokenCache{authenticator: authenticator, username: username, password: password}
}

// Token returns the cached access token, transparently reacquiring it when
// the cached one has expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if c.credentials.Valid() {
		return c.credentials.AccessToken, nil
	}
	credentials, err := c.authenticator.Acquire(ctx, c.username, c.password)
	if err != nil {
		return "", err
	}
	c.credentials = credentials
	return credentials.AccessToken, nil
}
