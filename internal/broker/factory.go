package broker

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"kudanforge/internal/config"
)

// Builder constructs a venue adapter from its config section.
type Builder func(cfg config.BrokerConfig) (Broker, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Builder{}
)

// Register makes a venue constructor available to New. Adapters call it from
// init; duplicate names panic because that is always a wiring bug.
func Register(name string, fn Builder) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || fn == nil {
		panic("broker: Register requires a name and a builder")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("broker: duplicate venue %q", name))
	}
	registry[name] = fn
}

// New builds the venue adapter named by cfg.Venue.
func New(cfg config.BrokerConfig) (Broker, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Venue))
	registryMu.RLock()
	fn, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported broker venue %q (have: %s)", cfg.Venue, strings.Join(venueNames(), ", "))
	}
	return fn(cfg)
}

func venueNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
