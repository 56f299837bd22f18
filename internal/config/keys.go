package config

import (
	"fmt"
	"strings"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "default-location").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "default-location",
		Description: "Location used when --location is not specified",
		Get:         func(cfg *Config) string { return cfg.DefaultLocation },
		Set:         func(cfg *Config, v string) { cfg.DefaultLocation = v },
	},
	{
		Name:        "agency-id",
		Description: "Agency (company) ID recorded in audit entries",
		Get:         func(cfg *Config) string { return cfg.AgencyID },
		Set:         func(cfg *Config, v string) { cfg.AgencyID = v },
	},
	{
		Name:        "api-base-url",
		Description: "CRM API base URL (defaults to the public endpoint)",
		Get:         func(cfg *Config) string { return cfg.APIBaseURL },
		Set:         func(cfg *Config, v string) { cfg.APIBaseURL = v },
	},
	{
		Name:        "oauth-base-url",
		Description: "OAuth token endpoint base URL",
		Get:         func(cfg *Config) string { return cfg.OAuthBaseURL },
		Set:         func(cfg *Config, v string) { cfg.OAuthBaseURL = v },
	},
	{
		Name:        "oauth-client-id",
		Description: "OAuth application client ID used for location connects",
		Get:         func(cfg *Config) string { return cfg.OAuthClientID },
		Set:         func(cfg *Config, v string) { cfg.OAuthClientID = v },
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
