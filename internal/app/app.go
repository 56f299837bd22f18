// Package app wires the credential vault, OAuth broker, CRM client,
// and executor together for the CLI commands.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"liv8/ghlm/internal/config"
	"liv8/ghlm/internal/ghl"
	"liv8/ghlm/internal/kvstore"
	"liv8/ghlm/internal/oauth"
	"liv8/ghlm/internal/vault"

	"github.com/charmbracelet/log"
)

// Environment overrides. The client secret is never stored in config.
const (
	EnvClientID     = "GHLM_OAUTH_CLIENT_ID"
	EnvClientSecret = "GHLM_OAUTH_CLIENT_SECRET"
	EnvNoKeyring    = "GHLM_NO_KEYRING"
)

// App holds the shared service graph for a single CLI invocation.
type App struct {
	Config *config.Config
	Store  kvstore.Store
	Broker *oauth.HTTPBroker
	Vault  *vault.Vault
	Client *ghl.Client
}

// New loads configuration and builds the service graph.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store := openStore()

	clientID := strings.TrimSpace(os.Getenv(EnvClientID))
	if clientID == "" {
		clientID = cfg.OAuthClientID
	}
	broker := oauth.NewHTTPBroker(cfg.OAuthBaseURL, clientID, os.Getenv(EnvClientSecret))

	return &App{
		Config: cfg,
		Store:  store,
		Broker: broker,
		Vault:  vault.New(store, broker),
		Client: ghl.NewClient(cfg.APIBaseURL),
	}, nil
}

// openStore prefers the OS keychain and falls back to the file store
// when no keyring backend is available (headless hosts, CI).
func openStore() kvstore.Store {
	if os.Getenv(EnvNoKeyring) == "" {
		ks := kvstore.NewKeyringStore("")
		if _, _, err := ks.Get(context.Background(), "vault_probe"); err == nil {
			return ks
		}
		log.Debug("keyring unavailable, using file store")
	}

	fs, err := kvstore.OpenDefault()
	if err != nil {
		log.Error("credential store unavailable", "err", err)
		return kvstore.NewMemStore()
	}
	return fs
}

// ResolveLocation picks the location to operate on: an explicit flag
// wins, then the configured default.
func (a *App) ResolveLocation(flag string) (string, error) {
	if loc := strings.TrimSpace(flag); loc != "" {
		return loc, nil
	}
	if a.Config.DefaultLocation != "" {
		return a.Config.DefaultLocation, nil
	}
	return "", fmt.Errorf("no location given: pass --location or set default-location with 'ghlm config set'")
}
