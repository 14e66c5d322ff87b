package payment

import (
	"fmt"
	"sort"
	"sync"
)

// Known gateway names. The create-order request selects one of these.
const (
	GatewayCashfree = "cashfree"
	GatewayStripe   = "stripe"
)

// Factory resolves payment providers by gateway name. Providers are
// registered once at startup from configuration; lookups are concurrent.
type Factory struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewFactory creates an empty provider factory.
func NewFactory() *Factory {
	return &Factory{providers: make(map[string]Provider)}
}

// Register adds a provider under the given gateway name, replacing any
// previous registration.
func (f *Factory) Register(name string, p Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[name] = p
}

// Provider returns the provider registered under name.
func (f *Factory) Provider(name string) (Provider, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, name)
	}
	return p, nil
}

// Gateways lists the registered gateway names, sorted.
func (f *Factory) Gateways() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
