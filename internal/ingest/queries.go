package ingest

import (
	"fmt"
	"strings"
)

// The query plan is deliberately split into many small bounded units: large
// unbounded queries against the endpoint time out, so each unit carries an
// explicit result cap and per-country batches stay at 5 codes.

// queryCountries fetches sovereign countries and ISO-coded territories.
const queryCountries = `
SELECT ?country ?isoA2
       (SAMPLE(?isoA3_)         AS ?isoA3)
       (SAMPLE(?nameEn_)        AS ?nameEn)
       (MAX(?pop_)              AS ?population)
       (SAMPLE(?flag_)          AS ?flagSvg)
       (SAMPLE(?capitalName_)   AS ?capital)
       (MAX(?area_)             AS ?areaKm2)
       (SAMPLE(?continent_)     AS ?continentQID)
       (SAMPLE(?continentName_) AS ?continentLabel)
WHERE {
  ?country wdt:P297 ?isoA2.
  OPTIONAL { ?country wdt:P298 ?isoA3_. }
  OPTIONAL { ?country rdfs:label ?nameEn_. FILTER(LANG(?nameEn_) = "en") }
  OPTIONAL { ?country wdt:P1082 ?pop_. }
  OPTIONAL { ?country wdt:P41  ?flag_. }
  OPTIONAL {
    ?country wdt:P36 ?cap_.
    ?cap_ rdfs:label ?capitalName_.
    FILTER(LANG(?capitalName_) = "en")
  }
  OPTIONAL { ?country wdt:P2046 ?area_. }
  OPTIONAL {
    ?country wdt:P30 ?cont_.
    BIND(STR(?cont_) AS ?continent_)
    ?cont_ rdfs:label ?continentName_.
    FILTER(LANG(?continentName_) = "en")
  }
}
GROUP BY ?country ?isoA2
ORDER BY ?isoA2
`

// queryFlagsByCountries finds flagged entities located in a batch of
// countries. Countries themselves are filtered out afterwards; a NOT EXISTS
// clause here is too expensive for the endpoint.
const queryFlagsByCountries = `
SELECT ?item ?itemLabel ?flag ?countryISO
WHERE {
  VALUES ?countryISO { %s }
  ?country wdt:P297 ?countryISO .
  ?item wdt:P17 ?country .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 400
`

func flagsByCountriesQuery(batch []string) string {
	quoted := make([]string, len(batch))
	for i, iso := range batch {
		quoted[i] = fmt.Sprintf("%q", iso)
	}
	return fmt.Sprintf(queryFlagsByCountries, strings.Join(quoted, " "))
}

// countryBatches groups two-letter codes into small batches for reliability.
var countryBatches = [][]string{
	{"DE", "FR", "GB", "IT", "ES"},
	{"NL", "BE", "PL", "AT", "CZ"},
	{"CH", "SE", "NO", "DK", "FI"},
	{"PT", "IE", "HU", "RO", "HR"},
	{"GR", "BG", "RS", "SK", "SI"},
	{"LT", "LV", "EE", "LU", "IS"},
	{"UA", "RU", "BY", "AL", "MK"},
	{"BA", "ME", "MD", "MT", "CY"},
	{"US", "CA", "MX", "BR", "AR"},
	{"CO", "CL", "PE", "VE", "EC"},
	{"BO", "PY", "UY", "CR", "PA"},
	{"CU", "DO", "GT", "HN", "SV"},
	{"CN", "JP", "IN", "ID", "KR"},
	{"TH", "PH", "VN", "MY", "SG"},
	{"PK", "BD", "LK", "MM", "NP"},
	{"TR", "IR", "IQ", "SA", "AE"},
	{"IL", "JO", "KW", "QA", "OM"},
	{"KZ", "UZ", "GE", "AM", "AZ"},
	{"ZA", "NG", "EG", "KE", "ET"},
	{"GH", "TZ", "CI", "CM", "SN"},
	{"MA", "DZ", "TN", "SD", "UG"},
	{"AU", "NZ", "FJ", "PG", "WS"},
}

// categoryQuery is one labelled query unit of a category query set.
type categoryQuery struct {
	label string
	query string
}

var historicalQueries = []categoryQuery{
	{
		"Historical countries (Q3024240)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q3024240 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 500`,
	},
	{
		"Former countries (Q1790360)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q1790360 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Dissolved sovereign states",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q3624078 .
  ?item wdt:P576 ?dissolved .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Colonies (Q133156)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q133156 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Former admin territories",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q28171280 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Ancient civilizations / city-states",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q839954 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Historical admin divisions",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q15642541 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Entities with dissolution date + flag",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P576 ?dissolved .
  ?item wdt:P41 ?flag .
  FILTER(YEAR(?dissolved) < 2000)
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 500`,
	},
	{
		"Client states (Q1451600)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q1451600 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Mandates/protectorates",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?type { wd:Q205895 wd:Q164142 }
  ?item wdt:P31 ?type .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Famous historical entities (direct QIDs)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?item {
    wd:Q7318 wd:Q15180 wd:Q12544 wd:Q12560 wd:Q45670 wd:Q83286 wd:Q43287
    wd:Q172107 wd:Q153136 wd:Q174306 wd:Q41304 wd:Q155059 wd:Q36704
    wd:Q170541 wd:Q159683 wd:Q2184 wd:Q170072 wd:Q180573 wd:Q11198
    wd:Q30059 wd:Q713750 wd:Q34266 wd:Q83164 wd:Q172579 wd:Q8675
    wd:Q131964 wd:Q154741 wd:Q9903 wd:Q8733 wd:Q148540 wd:Q12536
    wd:Q12564 wd:Q178038 wd:Q170587 wd:Q172640 wd:Q83860 wd:Q199442
    wd:Q12490 wd:Q3400 wd:Q193714 wd:Q48984 wd:Q42585 wd:Q107862
    wd:Q4948 wd:Q170467 wd:Q170460 wd:Q170478 wd:Q170895 wd:Q169652
    wd:Q170208 wd:Q170154 wd:Q170264 wd:Q170443 wd:Q170350 wd:Q170236
    wd:Q170318 wd:Q116750 wd:Q152750 wd:Q153015 wd:Q330672 wd:Q133346
    wd:Q33946 wd:Q1054923 wd:Q859563 wd:Q129053 wd:Q174193
  }
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}`,
	},
}

var internationalQueries = []categoryQuery{
	{
		"International organizations (Q484652)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q484652 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 400`,
	},
	{
		"Supranational organisations (Q1335818)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q1335818 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Intergovernmental organisations (Q245065)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q245065 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Military alliances (Q1127126)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q1127126 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 100`,
	},
	{
		"Trade blocs (Q7781198)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q7781198 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 100`,
	},
	{
		"Sports organizations with flags",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?type { wd:Q270028 wd:Q1194970 wd:Q4438121 }
  ?item wdt:P31 ?type .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Famous international orgs (direct QIDs)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?item {
    wd:Q1065 wd:Q458 wd:Q7184 wd:Q7825 wd:Q7768 wd:Q8908 wd:Q17495
    wd:Q7785 wd:Q47764 wd:Q41550 wd:Q7795 wd:Q1969730 wd:Q134102
    wd:Q340195 wd:Q81299 wd:Q170481 wd:Q191384 wd:Q7809 wd:Q8350
    wd:Q899770 wd:Q1779504 wd:Q189946 wd:Q156884 wd:Q8680 wd:Q7159
    wd:Q40857 wd:Q131535 wd:Q193376 wd:Q129286 wd:Q975405 wd:Q1137381
    wd:Q389867 wd:Q28222 wd:Q742023 wd:Q1191332 wd:Q9072 wd:Q37470
    wd:Q178122 wd:Q15042 wd:Q25277 wd:Q487907 wd:Q45546 wd:Q28231
  }
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}`,
	},
}

var territoryQueries = []categoryQuery{
	{
		"Dependent territories (Q161243)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q161243 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Overseas territories (Q783733)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q783733 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Unincorporated territories (Q1763527)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q1763527 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Crown dependencies (Q185086)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q185086 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 50`,
	},
	{
		"Autonomous territories",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?type { wd:Q1048835 wd:Q15916867 wd:Q1187015 wd:Q327333 }
  ?item wdt:P31 ?type .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 300`,
	},
	{
		"Special administrative regions",
		`SELECT ?item ?itemLabel ?flag WHERE {
  ?item wdt:P31 wd:Q779415 .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 100`,
	},
	{
		"Disputed territories",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?type { wd:Q15239622 wd:Q13107770 }
  ?item wdt:P31 ?type .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"British & French overseas territories",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?type { wd:Q46395 wd:Q719487 wd:Q202216 }
  ?item wdt:P31 ?type .
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}
LIMIT 200`,
	},
	{
		"Famous territories (direct QIDs)",
		`SELECT ?item ?itemLabel ?flag WHERE {
  VALUES ?item {
    wd:Q5765 wd:Q16641 wd:Q11703 wd:Q26988 wd:Q16644 wd:Q36823 wd:Q25228
    wd:Q35555 wd:Q25230 wd:Q13353 wd:Q25305 wd:Q29999 wd:Q23681 wd:Q35672
    wd:Q46197 wd:Q23635 wd:Q13218 wd:Q25279 wd:Q26273 wd:Q26180 wd:Q25396
    wd:Q17012 wd:Q223 wd:Q17054 wd:Q30971 wd:Q17070 wd:Q3769 wd:Q126125
    wd:Q17063 wd:Q25362 wd:Q17349 wd:Q34020 wd:Q34754 wd:Q35580 wd:Q18221
    wd:Q36004 wd:Q3311985 wd:Q131198 wd:Q14773 wd:Q34366 wd:Q1246 wd:Q219
    wd:Q23427 wd:Q31057 wd:Q2280 wd:Q3311 wd:Q3405 wd:Q9676
  }
  ?item wdt:P41 ?flag .
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en". }
}`,
	},
}
