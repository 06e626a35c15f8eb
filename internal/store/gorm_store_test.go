package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	st, err := NewFactory(zap.NewNop()).CreateStore("")
	require.NoError(t, err)
	return st
}

func testCountry(cca2, cca3, name string) *model.Country {
	return &model.Country{
		NameCommon:   name,
		NameOfficial: "Republic of " + name,
		CCA2:         cca2,
		CCA3:         cca3,
		Currencies:   datatypes.JSONMap{},
		Languages:    datatypes.JSONMap{},
		Timezones:    model.StringList(nil),
		Continents:   model.StringList(nil),
		Borders:      model.StringList(nil),
	}
}

func TestCreateStoreConfig(t *testing.T) {
	factory := NewFactory(zap.NewNop())

	_, err := factory.CreateStore(`{"db_type": "memory"}`)
	require.NoError(t, err)

	_, err = factory.CreateStore(`{"db_type": "oracle"}`)
	require.Error(t, err)

	_, err = factory.CreateStore(`{"db_type": "postgres"}`)
	require.Error(t, err) // missing conn_str

	_, err = factory.CreateStore(`{"db_type": "sqlite"}`)
	require.Error(t, err) // missing path

	_, err = factory.CreateStore(`not json`)
	require.Error(t, err)
}

func TestEnsureRegionsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	regions, err := st.EnsureRegions(ctx)
	require.NoError(t, err)
	require.Len(t, regions, len(model.RegionDescriptions))
	require.Equal(t, "europe", regions["Europe"].Slug)

	again, err := st.EnsureRegions(ctx)
	require.NoError(t, err)
	require.Equal(t, regions["Europe"].ID, again["Europe"].ID)

	stats, err := st.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(len(model.RegionDescriptions)), stats.Regions)
}

func TestUpsertCountryFullReplace(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := testCountry("CZ", "CZE", "Czechia")
	created, err := st.UpsertCountry(ctx, c)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, c.ID)

	update := testCountry("CZ", "CZE", "Czech Republic")
	update.Capital = "Prague"
	created, err = st.UpsertCountry(ctx, update)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, c.ID, update.ID)

	got, err := st.GetCountryByCCA3(ctx, "CZE")
	require.NoError(t, err)
	require.Equal(t, "Czech Republic", got.NameCommon)
	require.Equal(t, "Prague", got.Capital)
}

func TestUpsertCountryPartialFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := testCountry("CZ", "CZE", "Czechia")
	c.Currencies = datatypes.JSONMap{"CZK": map[string]interface{}{"name": "koruna"}}
	c.Borders = model.StringList([]string{"DEU", "AUT"})
	_, err := st.UpsertCountry(ctx, c)
	require.NoError(t, err)

	update := testCountry("CZ", "CZE", "Czech Republic")
	update.Population = 10500000
	created, err := st.UpsertCountry(ctx, update, "name_common", "population")
	require.NoError(t, err)
	require.False(t, created)

	got, err := st.GetCountryByCCA3(ctx, "CZE")
	require.NoError(t, err)
	require.Equal(t, "Czech Republic", got.NameCommon)
	require.Equal(t, int64(10500000), got.Population)
	// Columns outside the field list stay untouched.
	require.Contains(t, got.Currencies, "CZK")
	require.Equal(t, []string{"DEU", "AUT"}, got.BorderCodes())
}

func TestUpsertCountryCodeUniqueness(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertCountry(ctx, testCountry("CZ", "CZE", "Czechia"))
	require.NoError(t, err)

	// A fresh three-letter code with a colliding two-letter code hits the
	// unique index on the create path.
	_, err = st.UpsertCountry(ctx, testCountry("CZ", "CZX", "Bohemia Mirror"))
	require.Error(t, err)

	_, total, err := st.ListCountries(ctx, CountryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestUpsertFlagByWikidataID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	f := &model.FlagCollection{Name: "Moravia", Category: model.CategoryRegion, WikidataID: "Q43266"}
	created, err := st.UpsertFlagByWikidataID(ctx, f)
	require.NoError(t, err)
	require.True(t, created)

	update := &model.FlagCollection{
		Name: "Moravia", Category: model.CategoryRegion,
		WikidataID: "Q43266", FlagImage: "https://example.org/moravia.png",
	}
	created, err = st.UpsertFlagByWikidataID(ctx, update)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, f.ID, update.ID)

	flags, err := st.ListFlags(ctx, FlagFilter{})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Equal(t, "https://example.org/moravia.png", flags[0].FlagImage)

	_, err = st.UpsertFlagByWikidataID(ctx, &model.FlagCollection{Name: "No ID"})
	require.Error(t, err)
}

func TestGetOrCreateFlag(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	f := &model.FlagCollection{Name: "Silesia", Category: model.CategoryRegion, FlagImage: "first.png"}
	created, err := st.GetOrCreateFlag(ctx, f)
	require.NoError(t, err)
	require.True(t, created)

	dup := &model.FlagCollection{Name: "Silesia", Category: model.CategoryRegion, FlagImage: "second.png"}
	created, err = st.GetOrCreateFlag(ctx, dup)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, f.ID, dup.ID)

	// Same name under a different category is a distinct row.
	other := &model.FlagCollection{Name: "Silesia", Category: model.CategoryHistorical}
	created, err = st.GetOrCreateFlag(ctx, other)
	require.NoError(t, err)
	require.True(t, created)

	flags, err := st.ListFlags(ctx, FlagFilter{})
	require.NoError(t, err)
	require.Len(t, flags, 2)
	require.Equal(t, "first.png", flags[0].FlagImage)
}

func TestSeenWikidataIDs(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertFlagByWikidataID(ctx, &model.FlagCollection{Name: "Moravia", Category: model.CategoryRegion, WikidataID: "Q43266"})
	require.NoError(t, err)
	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{Name: "Anonymous", Category: model.CategoryOther})
	require.NoError(t, err)

	ids, err := st.SeenWikidataIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Q43266"}, ids)
}

func TestCountryLookups(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertCountry(ctx, testCountry("CZ", "CZE", "Czechia"))
	require.NoError(t, err)
	_, err = st.UpsertCountry(ctx, testCountry("SK", "SVK", "Slovakia"))
	require.NoError(t, err)

	names, err := st.CountryNames(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Czechia", "Slovakia"}, names)

	byCode, err := st.CountriesByCCA2(ctx)
	require.NoError(t, err)
	require.Len(t, byCode, 2)
	require.NotZero(t, byCode["CZ"])
	require.NotZero(t, byCode["SK"])
}

func TestReset(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.EnsureRegions(ctx)
	require.NoError(t, err)
	_, err = st.UpsertCountry(ctx, testCountry("CZ", "CZE", "Czechia"))
	require.NoError(t, err)
	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{Name: "Silesia", Category: model.CategoryRegion})
	require.NoError(t, err)

	require.NoError(t, st.Reset(ctx))

	stats, err := st.GetStats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Countries)
	require.Zero(t, stats.ExtraFlags)
	require.Zero(t, stats.Regions)
}

func TestDeleteFlagsMatchingCountryFlags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := testCountry("CZ", "CZE", "Czechia")
	c.FlagPNG = "https://flagcdn.com/w320/cz.png"
	_, err := st.UpsertCountry(ctx, c)
	require.NoError(t, err)

	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{
		Name: "Czech lands", Category: model.CategoryRegion,
		FlagImage: "https://flagcdn.com/w320/cz.png",
	})
	require.NoError(t, err)
	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{
		Name: "Moravia", Category: model.CategoryRegion,
		FlagImage: "https://example.org/moravia.png",
	})
	require.NoError(t, err)

	removed, err := st.DeleteFlagsMatchingCountryFlags(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	flags, err := st.ListFlags(ctx, FlagFilter{})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Equal(t, "Moravia", flags[0].Name)

	// Idempotent on a second pass.
	removed, err = st.DeleteFlagsMatchingCountryFlags(ctx)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestDeleteNoiseFlags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{
		"Brazil national football team",
		"Germany at the 2016 Summer Olympics",
		"Kingdom of Prussia",
	} {
		_, err := st.GetOrCreateFlag(ctx, &model.FlagCollection{Name: name, Category: model.CategoryOther})
		require.NoError(t, err)
	}

	removed, err := st.DeleteNoiseFlags(ctx, []string{"football team", "at the 20"})
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	flags, err := st.ListFlags(ctx, FlagFilter{})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Equal(t, "Kingdom of Prussia", flags[0].Name)

	removed, err = st.DeleteNoiseFlags(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestCollapseDuplicateFlagImages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Republic of Texas", "Texas", "Lone Star State"} {
		_, err := st.GetOrCreateFlag(ctx, &model.FlagCollection{
			Name: name, Category: model.CategoryHistorical,
			FlagImage: "https://example.org/texas.png",
		})
		require.NoError(t, err)
	}
	_, err := st.GetOrCreateFlag(ctx, &model.FlagCollection{
		Name: "Moravia", Category: model.CategoryRegion,
		FlagImage: "https://example.org/moravia.png",
	})
	require.NoError(t, err)

	removed, err := st.CollapseDuplicateFlagImages(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	flags, err := st.ListFlags(ctx, FlagFilter{Category: model.CategoryHistorical})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Equal(t, "Texas", flags[0].Name)
}

func TestListCountries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	regions, err := st.EnsureRegions(ctx)
	require.NoError(t, err)
	europeID := regions["Europe"].ID
	asiaID := regions["Asia"].ID

	cz := testCountry("CZ", "CZE", "Czechia")
	cz.RegionID = &europeID
	cz.Capital = "Prague"
	_, err = st.UpsertCountry(ctx, cz)
	require.NoError(t, err)

	sk := testCountry("SK", "SVK", "Slovakia")
	sk.RegionID = &europeID
	_, err = st.UpsertCountry(ctx, sk)
	require.NoError(t, err)

	jp := testCountry("JP", "JPN", "Japan")
	jp.RegionID = &asiaID
	_, err = st.UpsertCountry(ctx, jp)
	require.NoError(t, err)

	// Unfiltered, ordered by common name.
	countries, total, err := st.ListCountries(ctx, CountryFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, countries, 3)
	require.Equal(t, "Czechia", countries[0].NameCommon)
	require.Equal(t, "Japan", countries[1].NameCommon)
	require.NotNil(t, countries[0].Region)
	require.Equal(t, "Europe", countries[0].Region.Name)

	// Region filter.
	countries, total, err = st.ListCountries(ctx, CountryFilter{RegionSlug: "europe"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, countries, 2)

	// Search matches the capital too, case-insensitively.
	countries, total, err = st.ListCountries(ctx, CountryFilter{Search: "PRAG"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Czechia", countries[0].NameCommon)

	// Pagination.
	countries, total, err = st.ListCountries(ctx, CountryFilter{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, countries, 1)
	require.Equal(t, "Slovakia", countries[0].NameCommon)

	// Oversized page size is capped, undersized falls back.
	countries, _, err = st.ListCountries(ctx, CountryFilter{PerPage: 100000})
	require.NoError(t, err)
	require.Len(t, countries, 3)
}

func TestGetCountryByCCA3(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertCountry(ctx, testCountry("CZ", "CZE", "Czechia"))
	require.NoError(t, err)

	got, err := st.GetCountryByCCA3(ctx, "cze")
	require.NoError(t, err)
	require.Equal(t, "Czechia", got.NameCommon)

	_, err = st.GetCountryByCCA3(ctx, "XXX")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCountriesByCCA3s(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.UpsertCountry(ctx, testCountry("CZ", "CZE", "Czechia"))
	require.NoError(t, err)
	_, err = st.UpsertCountry(ctx, testCountry("SK", "SVK", "Slovakia"))
	require.NoError(t, err)

	countries, err := st.CountriesByCCA3s(ctx, []string{"CZE", "SVK", "XXX"})
	require.NoError(t, err)
	require.Len(t, countries, 2)

	countries, err = st.CountriesByCCA3s(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, countries)
}

func TestListFlagsFilter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	c := testCountry("CZ", "CZE", "Czechia")
	_, err := st.UpsertCountry(ctx, c)
	require.NoError(t, err)

	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{
		Name: "Moravia", Category: model.CategoryRegion, CountryID: &c.ID,
	})
	require.NoError(t, err)
	_, err = st.GetOrCreateFlag(ctx, &model.FlagCollection{
		Name: "Kingdom of Bohemia", Category: model.CategoryHistorical,
	})
	require.NoError(t, err)

	flags, err := st.ListFlags(ctx, FlagFilter{Category: model.CategoryRegion})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	require.Equal(t, "Moravia", flags[0].Name)

	flags, err = st.ListFlags(ctx, FlagFilter{CountryID: &c.ID})
	require.NoError(t, err)
	require.Len(t, flags, 1)

	flags, err = st.ListFlags(ctx, FlagFilter{})
	require.NoError(t, err)
	require.Len(t, flags, 2)
	// Ordered by name.
	require.Equal(t, "Kingdom of Bohemia", flags[0].Name)
}

func TestGetStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	regions, err := st.EnsureRegions(ctx)
	require.NoError(t, err)
	europeID := regions["Europe"].ID

	cz := testCountry("CZ", "CZE", "Czechia")
	cz.RegionID = &europeID
	_, err = st.UpsertCountry(ctx, cz)
	require.NoError(t, err)

	for _, f := range []model.FlagCollection{
		{Name: "Moravia", Category: model.CategoryRegion},
		{Name: "Silesia", Category: model.CategoryRegion},
		{Name: "Kingdom of Bohemia", Category: model.CategoryHistorical},
	} {
		flag := f
		_, err := st.GetOrCreateFlag(ctx, &flag)
		require.NoError(t, err)
	}

	stats, err := st.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Countries)
	require.Equal(t, int64(3), stats.ExtraFlags)
	require.Equal(t, CategoryCount{Category: model.CategoryRegion, Count: 2}, stats.ByCategory[0])
	require.Len(t, stats.ByRegion, 1)
	require.Equal(t, "Europe", stats.ByRegion[0].Region)
	require.Equal(t, int64(1), stats.ByRegion[0].Count)
}
