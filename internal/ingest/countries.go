package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/normalize"
)

// countryUpdateFields are the columns the graph query refreshes. The bulk
// dataset remains authoritative for everything else (currencies, languages,
// borders), so updates never touch those columns.
var countryUpdateFields = []string{
	"name_common", "name_official", "cca2", "capital", "region_id",
	"population", "flag_svg", "flag_png", "flag_emoji",
}

// runCountriesPhase refreshes countries from the graph query service.
// The whole phase is one query unit; its failure is logged and skipped.
func (p *Pipeline) runCountriesPhase(ctx context.Context, run *runContext, regions map[string]*model.Region) {
	p.logger.Info("querying source for countries")
	p.countUnit(ctx)
	rows, err := p.client.Query(ctx, queryCountries)
	if err != nil {
		p.countFailedUnit(ctx, run, "countries", err)
		return
	}
	p.logger.Info("country rows received", zap.Int("rows", len(rows)))

	sum := &run.summary.Countries
	for _, row := range rows {
		iso2 := strings.ToUpper(strings.TrimSpace(row.Value("isoA2")))
		iso3 := strings.ToUpper(strings.TrimSpace(row.Value("isoA3")))
		name := strings.TrimSpace(row.Value("nameEn"))

		if name == "" || iso2 == "" {
			p.countSkip(ctx, "countries", sum)
			continue
		}
		if normalize.IsUnresolvedLabel(name) {
			p.countSkip(ctx, "countries", sum)
			continue
		}
		if iso3 == "" {
			// Synthesize a stable three-letter key for territories that
			// carry only a two-letter code.
			iso3 = "X" + iso2
		}

		flagSVG, flagPNG := normalize.FlagURLs(iso2, row.Value("flagSvg"))
		area := normalize.ParseArea(row.Value("areaKm2"))
		regionName := normalize.RegionName(
			normalize.QID(row.Value("continentQID")),
			row.Value("continentLabel"),
		)

		country := &model.Country{
			NameCommon:   name,
			NameOfficial: name,
			CCA2:         iso2,
			CCA3:         iso3,
			Capital:      strings.TrimSpace(row.Value("capital")),
			RegionID:     regionID(regions, regionName),
			Population:   normalize.ParsePopulation(row.Value("population")),
			Area:         area,
			FlagSVG:      flagSVG,
			FlagPNG:      flagPNG,
			FlagEmoji:    normalize.FlagEmoji(iso2),
			Currencies:   datatypes.JSONMap{},
			Languages:    datatypes.JSONMap{},
			Timezones:    model.StringList(nil),
			Continents:   model.StringList(nil),
			Borders:      model.StringList(nil),
			Independent:  true,
		}

		fields := countryUpdateFields
		if area != nil {
			fields = append(append([]string{}, countryUpdateFields...), "area")
		}

		created, err := p.store.UpsertCountry(ctx, country, fields...)
		if err != nil {
			p.logger.Warn("failed to upsert country",
				zap.String("cca2", iso2), zap.String("name", name), zap.Error(err))
			p.countSkip(ctx, "countries", sum)
			continue
		}
		p.countRow(ctx, "countries", sum, created)
		run.countryNames[strings.ToLower(name)] = struct{}{}
		run.countryByISO2[iso2] = country.ID
	}

	p.logger.Info("countries phase done",
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", sum.Skipped))
}
