package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/classify"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
	"github.com/gyarab/2025-wt-prj-khudanych/internal/normalize"
)

const (
	defaultPerPage = 24
	maxPerPage     = 100
)

type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func newGormStore(dialector gorm.Dialector, logger *zap.Logger) (*gormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store connection: %w", err)
	}
	if err := db.AutoMigrate(&model.Region{}, &model.Country{}, &model.FlagCollection{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return &gormStore{db: db, logger: logger.Named("store")}, nil
}

func (s *gormStore) EnsureRegions(ctx context.Context) (map[string]*model.Region, error) {
	names := make([]string, 0, len(model.RegionDescriptions))
	for name := range model.RegionDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	regions := make(map[string]*model.Region, len(names))
	for _, name := range names {
		region := &model.Region{}
		err := s.db.WithContext(ctx).
			Where("name = ?", name).
			Attrs(model.Region{
				Name:        name,
				Slug:        normalize.Slugify(name),
				Description: model.RegionDescriptions[name],
			}).
			FirstOrCreate(region).Error
		if err != nil {
			return nil, fmt.Errorf("failed to ensure region %s: %w", name, err)
		}
		regions[name] = region
	}
	return regions, nil
}

func (s *gormStore) UpsertCountry(ctx context.Context, c *model.Country, fields ...string) (bool, error) {
	var existing model.Country
	err := s.db.WithContext(ctx).Where("cca3 = ?", c.CCA3).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	if len(fields) == 0 {
		// Full replacement; keep the surrogate ID and creation time.
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
			return false, err
		}
		return false, nil
	}

	err = s.db.WithContext(ctx).
		Model(&model.Country{}).
		Where("id = ?", existing.ID).
		Select(fields).
		Updates(c).Error
	if err != nil {
		return false, err
	}
	c.ID = existing.ID
	return false, nil
}

func (s *gormStore) UpsertFlagByWikidataID(ctx context.Context, f *model.FlagCollection) (bool, error) {
	if f.WikidataID == "" {
		return false, fmt.Errorf("wikidata id is required for this upsert")
	}
	var existing model.FlagCollection
	err := s.db.WithContext(ctx).Where("wikidata_id = ?", f.WikidataID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	err = s.db.WithContext(ctx).
		Model(&model.FlagCollection{}).
		Where("id = ?", existing.ID).
		Select("name", "category", "description", "flag_image", "country_id").
		Updates(f).Error
	if err != nil {
		return false, err
	}
	f.ID = existing.ID
	return false, nil
}

func (s *gormStore) GetOrCreateFlag(ctx context.Context, f *model.FlagCollection) (bool, error) {
	var existing model.FlagCollection
	err := s.db.WithContext(ctx).
		Where("name = ? AND category = ?", f.Name, f.Category).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	f.ID = existing.ID
	return false, nil
}

func (s *gormStore) SeenWikidataIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.FlagCollection{}).
		Where("wikidata_id <> ''").
		Pluck("wikidata_id", &ids).Error
	return ids, err
}

func (s *gormStore) CountryNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&model.Country{}).
		Pluck("name_common", &names).Error
	return names, err
}

func (s *gormStore) CountriesByCCA2(ctx context.Context) (map[string]uint, error) {
	var countries []model.Country
	err := s.db.WithContext(ctx).
		Select("id", "cca2").
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]uint, len(countries))
	for _, c := range countries {
		byCode[c.CCA2] = c.ID
	}
	return byCode, nil
}

func (s *gormStore) Reset(ctx context.Context) error {
	session := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := session.Delete(&model.FlagCollection{}).Error; err != nil {
		return fmt.Errorf("failed to clear flag collection: %w", err)
	}
	if err := session.Delete(&model.Country{}).Error; err != nil {
		return fmt.Errorf("failed to clear countries: %w", err)
	}
	if err := session.Delete(&model.Region{}).Error; err != nil {
		return fmt.Errorf("failed to clear regions: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteFlagsMatchingCountryFlags(ctx context.Context) (int64, error) {
	sub := s.db.Model(&model.Country{}).
		Select("flag_png").
		Where("flag_png <> ''")
	res := s.db.WithContext(ctx).
		Where("flag_image IN (?)", sub).
		Delete(&model.FlagCollection{})
	return res.RowsAffected, res.Error
}

func (s *gormStore) DeleteNoiseFlags(ctx context.Context, patterns []string) (int64, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	var rows []model.FlagCollection
	err := s.db.WithContext(ctx).
		Select("id", "name").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	var ids []uint
	for _, row := range rows {
		if classify.IsNoise(row.Name, patterns) {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.FlagCollection{})
	return res.RowsAffected, res.Error
}

func (s *gormStore) CollapseDuplicateFlagImages(ctx context.Context) (int64, error) {
	var images []string
	err := s.db.WithContext(ctx).
		Model(&model.FlagCollection{}).
		Select("flag_image").
		Where("flag_image <> ''").
		Group("flag_image").
		Having("COUNT(id) > 1").
		Pluck("flag_image", &images).Error
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, image := range images {
		var rows []model.FlagCollection
		err := s.db.WithContext(ctx).
			Where("flag_image = ?", image).
			Find(&rows).Error
		if err != nil {
			return removed, err
		}
		if len(rows) < 2 {
			continue
		}
		// Keep the shortest name; break ties by lowest ID.
		sort.Slice(rows, func(i, j int) bool {
			if len(rows[i].Name) != len(rows[j].Name) {
				return len(rows[i].Name) < len(rows[j].Name)
			}
			return rows[i].ID < rows[j].ID
		})
		ids := make([]uint, 0, len(rows)-1)
		for _, row := range rows[1:] {
			ids = append(ids, row.ID)
		}
		res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.FlagCollection{})
		if res.Error != nil {
			return removed, res.Error
		}
		removed += res.RowsAffected
	}
	return removed, nil
}

func (s *gormStore) ListCountries(ctx context.Context, filter CountryFilter) ([]model.Country, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Country{})

	if filter.RegionSlug != "" {
		q = q.Joins("JOIN regions ON regions.id = countries.region_id").
			Where("regions.slug = ?", filter.RegionSlug)
	}
	if filter.Search != "" {
		term := like(filter.Search)
		q = q.Where(
			"LOWER(name_common) LIKE ? OR LOWER(name_official) LIKE ? OR LOWER(capital) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	var countries []model.Country
	err := q.Preload("Region").
		Order("name_common ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&countries).Error
	return countries, total, err
}

func (s *gormStore) GetCountryByCCA3(ctx context.Context, cca3 string) (*model.Country, error) {
	var country model.Country
	err := s.db.WithContext(ctx).
		Preload("Region").
		Where("cca3 = ?", strings.ToUpper(cca3)).
		First(&country).Error
	if err != nil {
		return nil, err
	}
	return &country, nil
}

func (s *gormStore) CountriesByCCA3s(ctx context.Context, codes []string) ([]model.Country, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var countries []model.Country
	err := s.db.WithContext(ctx).
		Where("cca3 IN ?", codes).
		Order("name_common ASC").
		Find(&countries).Error
	return countries, err
}

func (s *gormStore) ListFlags(ctx context.Context, filter FlagFilter) ([]model.FlagCollection, error) {
	q := s.db.WithContext(ctx).Model(&model.FlagCollection{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.CountryID != nil {
		q = q.Where("country_id = ?", *filter.CountryID)
	}
	var flags []model.FlagCollection
	err := q.Order("name ASC").Find(&flags).Error
	return flags, err
}

func (s *gormStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	if err := s.db.WithContext(ctx).Model(&model.Country{}).Count(&stats.Countries).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.FlagCollection{}).Count(&stats.ExtraFlags).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Region{}).Count(&stats.Regions).Error; err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).
		Model(&model.FlagCollection{}).
		Select("category, COUNT(id) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats.ByCategory).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Table("countries").
		Select("regions.name AS region, regions.slug AS slug, COUNT(countries.id) AS count").
		Joins("JOIN regions ON regions.id = countries.region_id").
		Group("regions.id, regions.name, regions.slug").
		Order("count DESC").
		Scan(&stats.ByRegion).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func like(term string) string {
	return "%" + strings.ToLower(term) + "%"
}
