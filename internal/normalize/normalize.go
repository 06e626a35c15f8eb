// Package normalize converts raw heterogeneous source fields into the
// canonical attribute set used by the data model. All functions are pure.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// thumbWidth is the raster width requested from the Commons file path service.
const thumbWidth = 320

// FlagEmoji derives the regional-indicator emoji pair for a two-letter code.
// Returns "" unless the code is exactly two alphabetic characters.
func FlagEmoji(iso2 string) string {
	if len(iso2) != 2 {
		return ""
	}
	upper := strings.ToUpper(iso2)
	var b strings.Builder
	for _, c := range upper {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(rune(0x1F1E6 + c - 'A'))
	}
	return b.String()
}

// CommonsThumb builds a raster thumbnail URL for a Wikimedia Commons file URL.
func CommonsThumb(fileURL string, width int) string {
	if fileURL == "" {
		return ""
	}
	if width <= 0 {
		width = thumbWidth
	}
	parts := strings.Split(fileURL, "/")
	filename := parts[len(parts)-1]
	return fmt.Sprintf("https://commons.wikimedia.org/wiki/Special:FilePath/%s?width=%d", filename, width)
}

// FlagCDNSVG and FlagCDNPNG build conventional flag CDN URLs from a two-letter code.
func FlagCDNSVG(iso2 string) string {
	return fmt.Sprintf("https://flagcdn.com/%s.svg", strings.ToLower(iso2))
}

func FlagCDNPNG(iso2 string) string {
	return fmt.Sprintf("https://flagcdn.com/w320/%s.png", strings.ToLower(iso2))
}

// FlagURLs picks the vector/raster pair for a country. A source URL ending in
// .svg is kept and a Commons thumbnail synthesized from it; anything else
// falls back to the flag CDN pattern derived from the two-letter code.
func FlagURLs(iso2, sourceURL string) (svg, png string) {
	if sourceURL != "" && strings.HasSuffix(strings.ToLower(sourceURL), ".svg") {
		return sourceURL, CommonsThumb(sourceURL, thumbWidth)
	}
	return FlagCDNSVG(iso2), FlagCDNPNG(iso2)
}

// ImageURL normalizes an extra-flag image URL: vector sources become Commons
// thumbnails, everything else is passed through.
func ImageURL(sourceURL string) string {
	if strings.HasSuffix(strings.ToLower(sourceURL), ".svg") {
		return CommonsThumb(sourceURL, thumbWidth)
	}
	return sourceURL
}

// continentQIDMap maps continent entity identifiers to region names.
var continentQIDMap = map[string]string{
	"Q15": "Africa", "Q48": "Asia", "Q46": "Europe",
	"Q49": "Americas", "Q828": "Americas", "Q18": "Americas",
	"Q27611": "Americas", "Q664609": "Americas",
	"Q538": "Oceania", "Q51": "Antarctic",
}

// continentLabelMap maps lowercase continent labels to region names.
var continentLabelMap = map[string]string{
	"africa": "Africa", "asia": "Asia", "europe": "Europe",
	"north america": "Americas", "south america": "Americas",
	"central america": "Americas", "caribbean": "Americas",
	"americas": "Americas", "oceania": "Oceania",
	"australia": "Oceania", "antarctica": "Antarctic",
}

// RegionName resolves a continent QID or label to one of the six fixed region
// names. Returns "" when neither resolves; the record keeps a null region.
func RegionName(continentQID, continentLabel string) string {
	if name, ok := continentQIDMap[continentQID]; ok {
		return name
	}
	return continentLabelMap[strings.ToLower(strings.TrimSpace(continentLabel))]
}

// ParsePopulation parses a population value defensively; malformed input
// yields 0 rather than an error.
func ParsePopulation(raw string) int64 {
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// ParseArea parses an area value defensively; malformed input yields nil.
func ParseArea(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// IsUnresolvedLabel reports whether a label is a bare entity identifier
// ("Q" followed only by digits), which indicates a failed label lookup
// upstream and must never be stored as a display name.
func IsUnresolvedLabel(name string) bool {
	if len(name) < 2 || name[0] != 'Q' {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// QID extracts the entity identifier from a full entity URI.
func QID(uri string) string {
	if uri == "" {
		return ""
	}
	idx := strings.LastIndex(uri, "/")
	return uri[idx+1:]
}

// Slugify derives a URL-safe slug from a human label.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, c := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c):
			b.WriteRune(c)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Truncate limits a string to at most max bytes without splitting a rune,
// for columns with fixed widths.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
