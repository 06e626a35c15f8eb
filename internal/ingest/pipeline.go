// Package ingest drives the batch population pipeline: fetch rows from the
// external sources, normalize them, resolve identity, classify extras, upsert
// into the store and run post-ingestion cleanup. Execution is sequential by
// design; the endpoint's global rate limits rule out parallel fan-out.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/classify"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/source"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/store"
)

// Phase selects which parts of the pipeline run.
type Phase string

const (
	PhaseAll       Phase = "all"
	PhaseSeed      Phase = "seed"
	PhaseCountries Phase = "countries"
	PhaseExtras    Phase = "extras"
)

// Category selects which extras query sets run.
type Category string

const (
	CategoryAll           Category = "all"
	CategoryHistorical    Category = "historical"
	CategoryInternational Category = "international"
	CategoryTerritory     Category = "territory"
)

// Options are the operator-facing run parameters.
type Options struct {
	// Reset wipes all three tables before running.
	Reset bool
	// Phase selects seed (bulk dataset), countries (graph query), extras,
	// or all.
	Phase Phase
	// Category narrows the extras phase to one query set.
	Category Category
	// DatasetFile is the bulk dataset path, required by the seed phase.
	DatasetFile string
}

// PhaseSummary counts outcomes for one phase.
type PhaseSummary struct {
	Created int
	Updated int
	Skipped int
}

// Summary is the final run report.
type Summary struct {
	Seed           PhaseSummary
	Countries      PhaseSummary
	Extras         PhaseSummary
	FailedUnits    int
	CleanupRemoved int64
}

// runContext is the mutable state of one pipeline invocation: the dedup set
// seeded from persisted identifiers, the country name collision set and the
// two-letter-code lookup. It is created at run start and discarded at run end.
type runContext struct {
	seen          map[string]struct{}
	countryNames  map[string]struct{}
	countryByISO2 map[string]uint
	summary       Summary
}

func (r *runContext) markSeen(key string) bool {
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

func (r *runContext) shadowsCountry(name string) bool {
	_, ok := r.countryNames[strings.ToLower(name)]
	return ok
}

// Pipeline wires the source client, the store, the classifier and the noise
// policy together.
type Pipeline struct {
	store      store.Store
	client     *source.Client
	classifier *classify.Classifier
	noise      []string
	logger     *zap.Logger

	rowsCreated metric.Int64Counter
	rowsUpdated metric.Int64Counter
	rowsSkipped metric.Int64Counter
	unitsRun    metric.Int64Counter
	unitsFailed metric.Int64Counter
}

func NewPipeline(st store.Store, client *source.Client, logger *zap.Logger, meter metric.Meter) *Pipeline {
	p := &Pipeline{
		store:      st,
		client:     client,
		classifier: classify.NewClassifier(),
		noise:      classify.DefaultNoisePatterns(),
		logger:     logger.Named("ingest"),
	}
	if meter != nil {
		p.rowsCreated, _ = meter.Int64Counter("ingest_rows_created_total")
		p.rowsUpdated, _ = meter.Int64Counter("ingest_rows_updated_total")
		p.rowsSkipped, _ = meter.Int64Counter("ingest_rows_skipped_total")
		p.unitsRun, _ = meter.Int64Counter("ingest_query_units_total")
		p.unitsFailed, _ = meter.Int64Counter("ingest_query_units_failed_total")
	}
	return p
}

// Run executes one full pipeline invocation and returns the run summary.
// Only configuration errors abort the run; failed query units and malformed
// records are logged, counted and skipped.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Phase == "" {
		opts.Phase = PhaseAll
	}
	if opts.Category == "" {
		opts.Category = CategoryAll
	}

	var entries []source.DatasetEntry
	if opts.Phase == PhaseAll || opts.Phase == PhaseSeed {
		// A bad dataset path is a configuration error and must abort with the
		// store untouched, so resolve the file before any write happens.
		var err error
		entries, err = source.LoadDataset(opts.DatasetFile)
		if err != nil {
			return nil, err
		}
		p.logger.Info("loaded bulk dataset",
			zap.Int("entries", len(entries)), zap.String("path", opts.DatasetFile))
	}

	if opts.Reset {
		p.logger.Info("full reset requested, wiping all tables")
		if err := p.store.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset store: %w", err)
		}
	}

	regions, err := p.store.EnsureRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure regions: %w", err)
	}

	run, err := p.newRunContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run state: %w", err)
	}

	if opts.Phase == PhaseAll || opts.Phase == PhaseSeed {
		p.seedFromDataset(ctx, run, regions, entries)
	}

	if opts.Phase == PhaseAll || opts.Phase == PhaseCountries {
		p.runCountriesPhase(ctx, run, regions)
	}

	if opts.Phase == PhaseAll || opts.Phase == PhaseExtras {
		if err := p.refreshCountryLookups(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to refresh country lookups: %w", err)
		}
		p.runExtrasPhase(ctx, run, opts.Category)
	}

	run.summary.CleanupRemoved = p.cleanup(ctx)

	p.logSummary(&run.summary)
	return &run.summary, nil
}

func (p *Pipeline) newRunContext(ctx context.Context) (*runContext, error) {
	run := &runContext{
		seen:          make(map[string]struct{}),
		countryNames:  make(map[string]struct{}),
		countryByISO2: make(map[string]uint),
	}
	ids, err := p.store.SeenWikidataIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		run.seen[id] = struct{}{}
	}
	if err := p.refreshCountryLookups(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (p *Pipeline) refreshCountryLookups(ctx context.Context, run *runContext) error {
	names, err := p.store.CountryNames(ctx)
	if err != nil {
		return err
	}
	run.countryNames = make(map[string]struct{}, len(names))
	for _, name := range names {
		run.countryNames[strings.ToLower(name)] = struct{}{}
	}
	byISO2, err := p.store.CountriesByCCA2(ctx)
	if err != nil {
		return err
	}
	run.countryByISO2 = byISO2
	return nil
}

func (p *Pipeline) cleanup(ctx context.Context) int64 {
	p.logger.Info("running post-ingestion cleanup")
	var removed int64

	n, err := p.store.DeleteFlagsMatchingCountryFlags(ctx)
	if err != nil {
		p.logger.Warn("cleanup pass 1 failed", zap.Error(err))
	} else if n > 0 {
		p.logger.Info("removed entries duplicating country flags", zap.Int64("count", n))
	}
	removed += n

	n, err = p.store.DeleteNoiseFlags(ctx, p.noise)
	if err != nil {
		p.logger.Warn("cleanup pass 2 failed", zap.Error(err))
	} else if n > 0 {
		p.logger.Info("removed noise entries", zap.Int64("count", n))
	}
	removed += n

	n, err = p.store.CollapseDuplicateFlagImages(ctx)
	if err != nil {
		p.logger.Warn("cleanup pass 3 failed", zap.Error(err))
	} else if n > 0 {
		p.logger.Info("collapsed duplicate flag images", zap.Int64("count", n))
	}
	removed += n

	return removed
}

func (p *Pipeline) logSummary(s *Summary) {
	p.logger.Info("pipeline run finished",
		zap.Int("seed_created", s.Seed.Created),
		zap.Int("seed_updated", s.Seed.Updated),
		zap.Int("seed_skipped", s.Seed.Skipped),
		zap.Int("countries_created", s.Countries.Created),
		zap.Int("countries_updated", s.Countries.Updated),
		zap.Int("countries_skipped", s.Countries.Skipped),
		zap.Int("extras_created", s.Extras.Created),
		zap.Int("extras_updated", s.Extras.Updated),
		zap.Int("extras_skipped", s.Extras.Skipped),
		zap.Int("failed_units", s.FailedUnits),
		zap.Int64("cleanup_removed", s.CleanupRemoved),
	)
}

func (p *Pipeline) countRow(ctx context.Context, phase string, sum *PhaseSummary, created bool) {
	if created {
		sum.Created++
		if p.rowsCreated != nil {
			p.rowsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
		}
		return
	}
	sum.Updated++
	if p.rowsUpdated != nil {
		p.rowsUpdated.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
	}
}

func (p *Pipeline) countSkip(ctx context.Context, phase string, sum *PhaseSummary) {
	sum.Skipped++
	if p.rowsSkipped != nil {
		p.rowsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
	}
}

func (p *Pipeline) countUnit(ctx context.Context) {
	if p.unitsRun != nil {
		p.unitsRun.Add(ctx, 1)
	}
}

func (p *Pipeline) countFailedUnit(ctx context.Context, run *runContext, unit string, err error) {
	run.summary.FailedUnits++
	p.logger.Warn("query unit failed, continuing with next unit",
		zap.String("unit", unit), zap.Error(err))
	if p.unitsFailed != nil {
		p.unitsFailed.Add(ctx, 1)
	}
}

// regionID resolves a region name to its row ID, or nil when unresolved.
func regionID(regions map[string]*model.Region, name string) *uint {
	if region, ok := regions[name]; ok {
		id := region.ID
		return &id
	}
	return nil
}
