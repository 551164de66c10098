// Package harness assembles configuration into the clients, probes and token
// caches the CLI commands operate on.
package harness

import (
	"github.com/ticketly/system-tests/internal/config"
	"github.com/ticketly/system-tests/internal/probes"
	"github.com/ticketly/system-tests/pkg/client/auth"
	"github.com/ticketly/system-tests/pkg/client/rest"
	"github.com/ticketly/system-tests/pkg/client/ticketly"
)

type App struct {
	Config *config.Config

	Command *ticketly.CommandClient
	Query   *ticketly.QueryClient
	Orders  *ticketly.OrderClient

	EventDB *probes.PostgresProbe
	OrderDB *probes.PostgresProbe
	Docs    *probes.MongoProbe
	Locks   *probes.RedisProbe

	Authenticator *auth.Authenticator
	User          *auth.TokenCache
	Admin         *auth.TokenCache
}

// New loads the environment configuration and wires every collaborator from
// it. Nothing connects until a command actually uses a client or probe.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	restClient := rest.NewClient(cfg.HTTPTimeout)
	authenticator := auth.NewAuthenticator(auth.PasswordDetails{
		TokenURL: cfg.KeycloakTokenURL,
		ClientID: cfg.KeycloakClientID,
		Scopes:   []string{cfg.KeycloakScope},
	})

	return &App{
		Config:        cfg,
		Command:       ticketly.NewCommandClient(restClient, cfg.CommandServiceURL),
		Query:         ticketly.NewQueryClient(restClient, cfg.QueryServiceURL),
		Orders:        ticketly.NewOrderClient(restClient, cfg.OrderServiceURL),
		EventDB:       probes.NewPostgresProbe(cfg.EventDatabaseURL),
		OrderDB:       probes.NewPostgresProbe(cfg.OrderDatabaseURL),
		Docs:          probes.NewMongoProbe(cfg.MongoURL),
		Locks:         probes.NewRedisProbe(cfg.RedisAddr),
		Authenticator: authenticator,
		User:          auth.NewTokenCache(authenticator, cfg.Username, cfg.Password),
		Admin:         auth.NewTokenCache(authenticator, cfg.AdminUsername, cfg.AdminPassword),
	}, nil
}

// UserTokenCacheFactory returns a factory producing a fresh, unshared token
// cache per load-test actor.
func (a *App) UserTokenCacheFactory() func() *auth.TokenCache {
	return func() *auth.TokenCache {
		return auth.NewTokenCache(a.Authenticator, a.Config.Username, a.Config.Password)
	}
}
