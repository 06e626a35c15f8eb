package normalize

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestFlagEmoji(t *testing.T) {
	require.Equal(t, "\U0001F1E8\U0001F1FF", FlagEmoji("CZ"))
	require.Equal(t, "\U0001F1E8\U0001F1FF", FlagEmoji("cz"))
	require.Empty(t, FlagEmoji(""))
	require.Empty(t, FlagEmoji("C"))
	require.Empty(t, FlagEmoji("CZE"))
	require.Empty(t, FlagEmoji("C1"))
}

func TestCommonsThumb(t *testing.T) {
	url := CommonsThumb("http://commons.wikimedia.org/wiki/Special:FilePath/Flag%20of%20Testland.svg", 320)
	require.Equal(t, "https://commons.wikimedia.org/wiki/Special:FilePath/Flag%20of%20Testland.svg?width=320", url)

	// Non-positive width falls back to the default.
	url = CommonsThumb("https://example.org/files/banner.svg", 0)
	require.Equal(t, "https://commons.wikimedia.org/wiki/Special:FilePath/banner.svg?width=320", url)

	require.Empty(t, CommonsThumb("", 320))
}

func TestFlagURLs(t *testing.T) {
	svg, png := FlagURLs("CZ", "")
	require.Equal(t, "https://flagcdn.com/cz.svg", svg)
	require.Equal(t, "https://flagcdn.com/w320/cz.png", png)

	svg, png = FlagURLs("CZ", "http://commons.wikimedia.org/wiki/Special:FilePath/X.SVG")
	require.Equal(t, "http://commons.wikimedia.org/wiki/Special:FilePath/X.SVG", svg)
	require.Equal(t, "https://commons.wikimedia.org/wiki/Special:FilePath/X.SVG?width=320", png)

	// A raster source URL is ignored in favour of the CDN pattern.
	svg, png = FlagURLs("DE", "https://example.org/flag.png")
	require.Equal(t, "https://flagcdn.com/de.svg", svg)
	require.Equal(t, "https://flagcdn.com/w320/de.png", png)
}

func TestImageURL(t *testing.T) {
	require.Equal(t,
		"https://commons.wikimedia.org/wiki/Special:FilePath/Banner.svg?width=320",
		ImageURL("http://commons.wikimedia.org/wiki/Special:FilePath/Banner.svg"))
	require.Equal(t, "https://example.org/flag.png", ImageURL("https://example.org/flag.png"))
	require.Empty(t, ImageURL(""))
}

func TestRegionName(t *testing.T) {
	require.Equal(t, "Europe", RegionName("Q46", ""))
	require.Equal(t, "Americas", RegionName("Q18", ""))
	// Label fallback when the QID is unknown.
	require.Equal(t, "Americas", RegionName("Q999999", "South America"))
	require.Equal(t, "Oceania", RegionName("", " australia "))
	require.Empty(t, RegionName("", "Atlantis"))
}

func TestParsePopulation(t *testing.T) {
	require.Equal(t, int64(10500000), ParsePopulation("10500000"))
	require.Equal(t, int64(10500000), ParsePopulation("1.05e7"))
	require.Zero(t, ParsePopulation(""))
	require.Zero(t, ParsePopulation("many"))
}

func TestParseArea(t *testing.T) {
	a := ParseArea("78866.5")
	require.NotNil(t, a)
	require.InDelta(t, 78866.5, *a, 1e-9)
	require.Nil(t, ParseArea(""))
	require.Nil(t, ParseArea("big"))
}

func TestIsUnresolvedLabel(t *testing.T) {
	require.True(t, IsUnresolvedLabel("Q42"))
	require.True(t, IsUnresolvedLabel("Q123456789"))
	require.False(t, IsUnresolvedLabel("Q"))
	require.False(t, IsUnresolvedLabel("Quebec"))
	require.False(t, IsUnresolvedLabel("Q42b"))
	require.False(t, IsUnresolvedLabel("Flag of Q42"))
}

func TestQID(t *testing.T) {
	require.Equal(t, "Q213", QID("http://www.wikidata.org/entity/Q213"))
	require.Equal(t, "Q213", QID("Q213"))
	require.Empty(t, QID(""))
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "americas", Slugify("Americas"))
	require.Equal(t, "bosnia-and-herzegovina", Slugify("Bosnia and Herzegovina"))
	require.Equal(t, "cote-d-ivoire", Slugify("  Cote d'Ivoire  "))
	require.Empty(t, Slugify("---"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", Truncate("abc", 5))
	require.Equal(t, "abcde", Truncate("abcdefgh", 5))
	require.Empty(t, Truncate("", 5))
}

func TestTruncateRuneBoundary(t *testing.T) {
	// A cut landing mid-rune backs up to the previous boundary instead of
	// persisting invalid UTF-8.
	require.Equal(t, "ñ", Truncate("ñño", 3))
	require.Equal(t, "ññ", Truncate("ñño", 4))
	got := Truncate("Chránené územie", 9)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, "Chránen", got)
}
