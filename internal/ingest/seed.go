package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/normalize"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/source"
)

// seedFromDataset populates countries from the bulk open dataset. The dataset
// carries no population figures, so population stays at 0 until the graph
// query phase refreshes it.
func (p *Pipeline) seedFromDataset(ctx context.Context, run *runContext, regions map[string]*model.Region, entries []source.DatasetEntry) {
	sum := &run.summary.Seed
	for _, entry := range entries {
		if entry.CCA2 == "" || entry.CCA3 == "" {
			p.countSkip(ctx, "seed", sum)
			continue
		}

		nameCommon := entry.Name.Common
		if nameCommon == "" {
			nameCommon = "Unknown"
		}
		nameOfficial := entry.Name.Official
		if nameOfficial == "" {
			nameOfficial = nameCommon
		}

		capital := ""
		if len(entry.Capital) > 0 {
			capital = entry.Capital[0]
		}

		var latitude, longitude *float64
		if len(entry.Latlng) > 0 {
			lat := entry.Latlng[0]
			latitude = &lat
		}
		if len(entry.Latlng) > 1 {
			lng := entry.Latlng[1]
			longitude = &lng
		}

		continents := []string{}
		if entry.Region != "" {
			continents = append(continents, entry.Region)
		}

		independent := false
		if entry.Independent != nil {
			independent = *entry.Independent
		}

		country := &model.Country{
			NameCommon:   nameCommon,
			NameOfficial: nameOfficial,
			CCA2:         entry.CCA2,
			CCA3:         entry.CCA3,
			Capital:      capital,
			RegionID:     regionID(regions, entry.Region),
			Subregion:    entry.Subregion,
			Population:   0,
			Area:         entry.Area,
			Latitude:     latitude,
			Longitude:    longitude,
			FlagSVG:      normalize.FlagCDNSVG(entry.CCA2),
			FlagPNG:      normalize.FlagCDNPNG(entry.CCA2),
			FlagEmoji:    entry.Flag,
			Currencies:   jsonMap(entry.Currencies),
			Languages:    jsonMap(entry.Languages),
			Timezones:    model.StringList(nil),
			Continents:   model.StringList(continents),
			Borders:      model.StringList(entry.Borders),
			Independent:  independent,
			UNMember:     entry.UNMember,
		}

		created, err := p.store.UpsertCountry(ctx, country)
		if err != nil {
			p.logger.Warn("failed to upsert country from dataset",
				zap.String("cca3", entry.CCA3), zap.Error(err))
			p.countSkip(ctx, "seed", sum)
			continue
		}
		p.countRow(ctx, "seed", sum, created)
		run.countryNames[strings.ToLower(nameCommon)] = struct{}{}
		run.countryByISO2[entry.CCA2] = country.ID
	}

	p.logger.Info("seed phase done",
		zap.Int("created", sum.Created),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", sum.Skipped))
}

func jsonMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
