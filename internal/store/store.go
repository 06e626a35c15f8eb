// Package store persists the catalog tables and exposes the natural-key
// upsert, cleanup and read surfaces. Providers are created through a factory
// from a JSON configuration, mirroring how the rest of the service wires its
// backends.
package store

import (
	"context"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
)

// CountryFilter narrows and paginates country listings.
type CountryFilter struct {
	RegionSlug string
	Search     string
	Page       int
	PerPage    int
}

// FlagFilter narrows extra-flag listings.
type FlagFilter struct {
	Category  string
	CountryID *uint
}

// CategoryCount is one aggregate bucket of the stats surface.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// RegionCount is one per-region aggregate bucket.
type RegionCount struct {
	Region string `json:"region"`
	Slug   string `json:"slug"`
	Count  int64  `json:"count"`
}

// Stats aggregates row counts for the browsing layer.
type Stats struct {
	Countries  int64           `json:"countries"`
	ExtraFlags int64           `json:"extra_flags"`
	Regions    int64           `json:"regions"`
	ByCategory []CategoryCount `json:"by_category"`
	ByRegion   []RegionCount   `json:"by_region"`
}

// Store is the persistence contract shared by the ingest pipeline and the
// read-only browsing API.
type Store interface {
	// EnsureRegions creates the fixed region list if absent and returns a
	// name-to-region mapping.
	EnsureRegions(ctx context.Context) (map[string]*model.Region, error)

	// UpsertCountry inserts or updates by the CCA3 natural key. When fields
	// are given, only those columns are written on update; otherwise every
	// non-key field is replaced. Reports whether a new row was created.
	UpsertCountry(ctx context.Context, c *model.Country, fields ...string) (bool, error)

	// UpsertFlagByWikidataID inserts or updates by the external identifier.
	UpsertFlagByWikidataID(ctx context.Context, f *model.FlagCollection) (bool, error)

	// GetOrCreateFlag inserts by the (name, category) pair if absent.
	// Existing rows are left untouched.
	GetOrCreateFlag(ctx context.Context, f *model.FlagCollection) (bool, error)

	// SeenWikidataIDs returns every non-empty external identifier already
	// persisted, used to seed the dedup set at run start.
	SeenWikidataIDs(ctx context.Context) ([]string, error)

	// CountryNames returns all common names, for cross-table collision checks.
	CountryNames(ctx context.Context) ([]string, error)

	// CountriesByCCA2 maps two-letter codes to country row IDs.
	CountriesByCCA2(ctx context.Context) (map[string]uint, error)

	// Reset wipes all three tables. Only used for explicit full-reset runs.
	Reset(ctx context.Context) error

	// Cleanup surface, run once per pipeline invocation.
	DeleteFlagsMatchingCountryFlags(ctx context.Context) (int64, error)
	DeleteNoiseFlags(ctx context.Context, patterns []string) (int64, error)
	CollapseDuplicateFlagImages(ctx context.Context) (int64, error)

	// Read surface for the browsing layer.
	ListCountries(ctx context.Context, filter CountryFilter) ([]model.Country, int64, error)
	GetCountryByCCA3(ctx context.Context, cca3 string) (*model.Country, error)
	CountriesByCCA3s(ctx context.Context, codes []string) ([]model.Country, error)
	ListFlags(ctx context.Context, filter FlagFilter) ([]model.FlagCollection, error)
	GetStats(ctx context.Context) (*Stats, error)
}
