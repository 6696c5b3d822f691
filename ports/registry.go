/*
registry.go - Built-in tariff profile registration and lookup

PURPOSE:
  Lets callers find a built-in profile by ID without importing a
  constructor per port. Profiles register themselves on init(); the server
  seeds its TariffStore from List().

USAGE:
  profile, ok := ports.Lookup("chornomorsk")
  for _, p := range ports.List() { store.Save(ctx, p) }

SEE ALSO:
  - profiles.go: The built-in profiles
  - cmd/server/main.go: Seeds the store from the registry
*/
package ports

import (
	"fmt"
	"sort"
	"sync"

	"github.com/warp/pda-engine/disbursement"
)

// =============================================================================
// PROFILE REGISTRY
// =============================================================================

var (
	registry   = make(map[string]func() disbursement.TariffProfile)
	registryMu sync.RWMutex
)

func init() {
	Register(ProfileStandard, Standard)
	Register(ProfileChornomorsk, Chornomorsk)
}

// Register adds a profile constructor under id.
func Register(id string, build func() disbursement.TariffProfile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = build
}

// Lookup returns a fresh copy of the profile registered under id.
func Lookup(id string) (disbursement.TariffProfile, bool) {
	registryMu.RLock()
	build, ok := registry[id]
	registryMu.RUnlock()
	if !ok {
		return disbursement.TariffProfile{}, false
	}
	return build(), true
}

// MustLookup returns a registered profile or panics.
// Use in tests or when you're certain the profile exists.
func MustLookup(id string) disbursement.TariffProfile {
	p, ok := Lookup(id)
	if !ok {
		panic(fmt.Sprintf("tariff profile not registered: %s", id))
	}
	return p
}

// List returns every registered profile, ordered by ID.
func List() []disbursement.TariffProfile {
	registryMu.RLock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	registryMu.RUnlock()

	sort.Strings(ids)
	out := make([]disbursement.TariffProfile, 0, len(ids))
	for _, id := range ids {
		out = append(out, MustLookup(id))
	}
	return out
}
