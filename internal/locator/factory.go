package locator

import (
	"fmt"

	"scantab/internal/config"
	"scantab/internal/port"
)

// ProviderFactory is a function that creates a TextLocator from a provider config.
type ProviderFactory func(cfg *config.LocatorProviderConfig) (port.TextLocator, error)

// registry of locator provider factories, populated by init() in each provider
// package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a locator provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewLocator creates a TextLocator from a provider config using the registered factory.
func NewLocator(cfg *config.LocatorProviderConfig) (port.TextLocator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown locator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
