/*
store.go - Persistence interface for tariff profiles

PURPOSE:
  Defines the interface between the engine and wherever tariff profiles
  live. Only tariffs are stored: calculations are never persisted, every
  run is recomputed from its inputs.

KEY INTERFACES:
  TariffStore: Save, Get, List and Delete tariff profiles

CONTRACT:
  - Save validates the profile first and replaces any profile with the
    same ID (the SQLite store bumps a version number)
  - Get returns ErrProfileNotFound for unknown IDs
  - List is ordered by profile ID

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, profiles stored as JSON documents
  - disbursement/store/memory.go: In-memory for testing

SEE ALSO:
  - tariff.go: TariffProfile
  - factory/tariff.go: Document format used by the SQLite store
*/
package disbursement

import "context"

// =============================================================================
// TARIFF STORE
// =============================================================================

// TariffStore persists tariff profiles.
type TariffStore interface {
	// Save stores a valid profile, replacing one with the same ID.
	Save(ctx context.Context, profile TariffProfile) error

	// Get returns the profile with the given ID or ErrProfileNotFound.
	Get(ctx context.Context, id string) (*TariffProfile, error)

	// List returns all profiles ordered by ID.
	List(ctx context.Context) ([]TariffProfile, error)

	// Delete removes a profile. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}
