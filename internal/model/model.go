package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Region is a geographic grouping (continent). Created once at pipeline start,
// referenced but never owned by countries.
type Region struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:100;uniqueIndex" json:"slug"`
	Description string `json:"description"`
}

// RegionDescriptions is the fixed seed list of continents.
var RegionDescriptions = map[string]string{
	"Africa":    "The second-largest and second-most populous continent, home to 54 countries.",
	"Americas":  "Comprising North America, Central America, South America and the Caribbean.",
	"Antarctic": "The southernmost continent, surrounding the South Pole.",
	"Asia":      "The largest and most populous continent, spanning from the Middle East to the Pacific.",
	"Europe":    "The second-smallest continent, known for its rich history and cultural diversity.",
	"Oceania":   "A geographic region including Australasia, Melanesia, Micronesia and Polynesia.",
}

// Country is one sovereign state or ISO-coded territory. CCA3 is the natural
// key used for upserts; CCA2 and CCA3 are each globally unique.
type Country struct {
	ID uint `gorm:"primaryKey" json:"id"`

	NameCommon   string `gorm:"size:200;index" json:"name_common"`
	NameOfficial string `gorm:"size:200" json:"name_official"`
	CCA2         string `gorm:"column:cca2;size:2;uniqueIndex" json:"cca2"`
	CCA3         string `gorm:"column:cca3;size:3;uniqueIndex" json:"cca3"`

	Capital   string  `gorm:"size:200" json:"capital"`
	RegionID  *uint   `gorm:"index" json:"region_id"`
	Region    *Region `gorm:"constraint:OnDelete:SET NULL" json:"region,omitempty"`
	Subregion string  `gorm:"size:100" json:"subregion"`

	Population int64    `gorm:"default:0;index" json:"population"`
	Area       *float64 `json:"area"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`

	FlagSVG       string `gorm:"size:500" json:"flag_svg"`
	FlagPNG       string `gorm:"size:500" json:"flag_png"`
	FlagEmoji     string `gorm:"size:10" json:"flag_emoji"`
	CoatOfArmsSVG string `gorm:"size:500" json:"coat_of_arms_svg"`
	CoatOfArmsPNG string `gorm:"size:500" json:"coat_of_arms_png"`

	Currencies datatypes.JSONMap `json:"currencies"`
	Languages  datatypes.JSONMap `json:"languages"`
	Timezones  datatypes.JSON    `json:"timezones"`
	Continents datatypes.JSON    `json:"continents"`
	Borders    datatypes.JSON    `json:"borders"`

	Independent bool `gorm:"default:true" json:"independent"`
	UNMember    bool `gorm:"column:un_member" json:"un_member"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BorderCodes decodes the stored border list of neighboring CCA3 codes.
func (c *Country) BorderCodes() []string {
	return decodeStringList(c.Borders)
}

// ContinentLabels decodes the stored continent label list.
func (c *Country) ContinentLabels() []string {
	return decodeStringList(c.Continents)
}

// StringList encodes a slice of strings as a JSON column value.
func StringList(vals []string) datatypes.JSON {
	if vals == nil {
		vals = []string{}
	}
	b, _ := json.Marshal(vals)
	return datatypes.JSON(b)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var vals []string
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	return vals
}

// Flag categories for FlagCollection.
const (
	CategoryTerritory     = "territory"
	CategoryHistorical    = "historical"
	CategoryState         = "state"
	CategoryCity          = "city"
	CategoryInternational = "international"
	CategoryRegion        = "region"
	CategoryOther         = "other"
)

// Categories lists every valid flag category.
func Categories() []string {
	return []string{
		CategoryTerritory, CategoryHistorical, CategoryState, CategoryCity,
		CategoryInternational, CategoryRegion, CategoryOther,
	}
}

// FlagCollection is a supplementary flag entry for an entity that is not a
// current sovereign country. WikidataID, when present, is authoritative for
// identity; otherwise identity is the (name, category) pair.
type FlagCollection struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200" json:"name"`
	Category    string `gorm:"size:100;index" json:"category"`
	Description string `json:"description"`

	FlagImage  string `gorm:"size:500" json:"flag_image"`
	WikidataID string `gorm:"size:20;index" json:"wikidata_id"`

	CountryID *uint    `gorm:"index" json:"country_id"`
	Country   *Country `gorm:"constraint:OnDelete:SET NULL" json:"country,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
