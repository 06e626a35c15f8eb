package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/normalize"
)

// flagCandidate is one normalized extra-flag record, resolved to a single
// shape regardless of which query template produced it.
type flagCandidate struct {
	name        string
	flagURL     string
	category    string
	wikidataID  string
	countryISO2 string
	description string
}

// runExtrasPhase populates the flag collection. With the "all" category this
// runs the per-country batches plus every category query set; a narrower
// selector runs just that category's set.
func (p *Pipeline) runExtrasPhase(ctx context.Context, run *runContext, category Category) {
	switch category {
	case CategoryAll:
		p.runCountryBatches(ctx, run)
		p.runCategorySet(ctx, run, model.CategoryHistorical, historicalQueries)
		p.runCategorySet(ctx, run, model.CategoryInternational, internationalQueries)
		p.runCategorySet(ctx, run, model.CategoryTerritory, territoryQueries)
	case CategoryHistorical:
		p.runCategorySet(ctx, run, model.CategoryHistorical, historicalQueries)
	case CategoryInternational:
		p.runCategorySet(ctx, run, model.CategoryInternational, internationalQueries)
	case CategoryTerritory:
		p.runCategorySet(ctx, run, model.CategoryTerritory, territoryQueries)
	default:
		p.logger.Warn("unknown extras category, nothing to do",
			zap.String("category", string(category)))
	}
}

// runCountryBatches fetches flagged entities located in each country batch
// and classifies them by label.
func (p *Pipeline) runCountryBatches(ctx context.Context, run *runContext) {
	p.logger.Info("running flagged-entity batches", zap.Int("batches", len(countryBatches)))
	for i, batch := range countryBatches {
		unit := fmt.Sprintf("batch %d/%d (%s)", i+1, len(countryBatches), strings.Join(batch, ", "))
		p.countUnit(ctx)
		rows, err := p.client.Query(ctx, flagsByCountriesQuery(batch))
		if err != nil {
			p.countFailedUnit(ctx, run, unit, err)
			continue
		}
		p.logger.Debug("batch done", zap.String("unit", unit), zap.Int("rows", len(rows)))
		for _, row := range rows {
			name := strings.TrimSpace(row.Value("itemLabel"))
			p.saveFlag(ctx, run, flagCandidate{
				name:        name,
				flagURL:     row.Value("flag"),
				category:    p.classifier.Classify(name),
				wikidataID:  normalize.QID(row.Value("item")),
				countryISO2: strings.TrimSpace(row.Value("countryISO")),
			})
		}
	}
}

// runCategorySet runs every query unit of one category set. All rows get the
// set's category; labels are not classified here.
func (p *Pipeline) runCategorySet(ctx context.Context, run *runContext, category string, queries []categoryQuery) {
	p.logger.Info("running extras category", zap.String("category", category), zap.Int("units", len(queries)))
	for _, q := range queries {
		p.countUnit(ctx)
		rows, err := p.client.Query(ctx, q.query)
		if err != nil {
			p.countFailedUnit(ctx, run, q.label, err)
			continue
		}
		p.logger.Debug("query unit done", zap.String("unit", q.label), zap.Int("rows", len(rows)))
		for _, row := range rows {
			p.saveFlag(ctx, run, flagCandidate{
				name:       strings.TrimSpace(row.Value("itemLabel")),
				flagURL:    row.Value("flag"),
				category:   category,
				wikidataID: normalize.QID(row.Value("item")),
			})
		}
	}
}

// saveFlag resolves identity and persists one candidate. The dedup-set check
// runs before the cross-table name collision check: the set is cheaper and
// the collision check needs a store-backed lookup.
func (p *Pipeline) saveFlag(ctx context.Context, run *runContext, cand flagCandidate) {
	sum := &run.summary.Extras

	if cand.name == "" || cand.flagURL == "" {
		p.countSkip(ctx, "extras", sum)
		return
	}
	if normalize.IsUnresolvedLabel(cand.name) {
		p.countSkip(ctx, "extras", sum)
		return
	}

	dedupKey := cand.wikidataID
	if dedupKey == "" {
		dedupKey = cand.name
	}
	if !run.markSeen(dedupKey) {
		// Expected steady state on repeated runs, not an error.
		p.countSkip(ctx, "extras", sum)
		return
	}
	if run.shadowsCountry(cand.name) {
		p.countSkip(ctx, "extras", sum)
		return
	}

	var countryID *uint
	if cand.countryISO2 != "" {
		if id, ok := run.countryByISO2[strings.ToUpper(cand.countryISO2)]; ok {
			cid := id
			countryID = &cid
		}
	}

	flag := &model.FlagCollection{
		Name:        normalize.Truncate(cand.name, 200),
		Category:    cand.category,
		Description: normalize.Truncate(cand.description, 500),
		FlagImage:   normalize.ImageURL(cand.flagURL),
		WikidataID:  cand.wikidataID,
		CountryID:   countryID,
	}

	var created bool
	var err error
	if cand.wikidataID != "" {
		created, err = p.store.UpsertFlagByWikidataID(ctx, flag)
	} else {
		created, err = p.store.GetOrCreateFlag(ctx, flag)
	}
	if err != nil {
		p.logger.Warn("failed to save flag",
			zap.String("name", cand.name), zap.Error(err))
		p.countSkip(ctx, "extras", sum)
		return
	}
	p.countRow(ctx, "extras", sum, created)
}
