// Package countries is the single authoritative mapping between the country
// naming used by the local catalog (ISO-ish codes, display names, regional
// bundle labels) and the canonical lower-case tokens the reseller embeds in
// its package slugs. Every code path that derives or searches for a slug goes
// through this table; nothing else may carry its own synonym map.
package countries

import (
	"regexp"
	"strings"
)

var codeTokens = map[string]string{
	"AL": "albania", "AD": "andorra", "AT": "austria", "BY": "belarus",
	"BE": "belgium", "BA": "bosnia-and-herzegovina", "BG": "bulgaria",
	"HR": "croatia", "CY": "cyprus", "CZ": "czech-republic", "DK": "denmark",
	"EE": "estonia", "FI": "finland", "FR": "france", "GE": "georgia",
	"DE": "germany", "GR": "greece", "HU": "hungary", "IS": "iceland",
	"IE": "ireland", "IT": "italy", "XK": "kosovo", "LV": "latvia",
	"LI": "liechtenstein", "LT": "lithuania", "LU": "luxembourg",
	"MT": "malta", "MD": "moldova", "MC": "monaco", "ME": "montenegro",
	"NL": "netherlands", "MK": "north-macedonia", "NO": "norway",
	"PL": "poland", "PT": "portugal", "RO": "romania", "RS": "serbia",
	"SK": "slovakia", "SI": "slovenia", "ES": "spain", "SE": "sweden",
	"CH": "switzerland", "TR": "turkey", "UA": "ukraine",
	"GB": "united-kingdom", "UK": "united-kingdom",
	"US": "united-states", "CA": "canada", "MX": "mexico",
	"JP": "japan", "KR": "south-korea", "CN": "china", "IN": "india",
	"TH": "thailand", "SG": "singapore", "AU": "australia",
	"NZ": "new-zealand", "ZA": "south-africa", "EG": "egypt",
	"AE": "united-arab-emirates", "SA": "saudi-arabia", "IL": "israel",

	// Regional bundle pseudo-codes used by catalog administration.
	"EUUS":   "europe-us",
	"EU":     "europe",
	"GLOBAL": "global",
}

// nameSynonyms resolves display variants that plain tokenization would get
// wrong. Keys are normalized (lower-case, "&" expanded, parentheticals
// stripped).
var nameSynonyms = map[string]string{
	"europe and united states": "europe-us",
	"europe and us":            "europe-us",
	"europe us":                "europe-us",
	"usa":                      "united-states",
	"united states of america": "united-states",
	"great britain":            "united-kingdom",
	"czechia":                  "czech-republic",
	"macedonia":                "north-macedonia",
	"bosnia":                   "bosnia-and-herzegovina",
	"uae":                      "united-arab-emirates",
	"dubai":                    "united-arab-emirates",
	"korea":                    "south-korea",
}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)
var whitespace = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = parenthetical.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, ",", " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Canonical maps a country code, country name, or regional bundle label to
// its canonical slug token. The same input always yields the same token no
// matter which display variant was used when the package was authored.
func Canonical(nameOrCode string) (string, bool) {
	s := strings.TrimSpace(nameOrCode)
	if s == "" {
		return "", false
	}
	if tok, ok := codeTokens[strings.ToUpper(s)]; ok {
		return tok, true
	}
	n := normalize(s)
	if n == "" {
		return "", false
	}
	if tok, ok := nameSynonyms[n]; ok {
		return tok, true
	}
	tok := strings.ReplaceAll(n, " ", "-")
	for _, known := range codeTokens {
		if known == tok {
			return tok, true
		}
	}
	if groupMembers[tok] != nil {
		return tok, true
	}
	return "", false
}

// groupMembers lists which country tokens each regional bundle covers. Group
// order in RegionTokens follows preference: the tightest grouping first,
// global last.
var groupMembers = map[string]map[string]bool{
	"europe":    setOf("albania", "andorra", "austria", "belarus", "belgium", "bosnia-and-herzegovina", "bulgaria", "croatia", "cyprus", "czech-republic", "denmark", "estonia", "finland", "france", "georgia", "germany", "greece", "hungary", "iceland", "ireland", "italy", "kosovo", "latvia", "liechtenstein", "lithuania", "luxembourg", "malta", "moldova", "monaco", "montenegro", "netherlands", "north-macedonia", "norway", "poland", "portugal", "romania", "serbia", "slovakia", "slovenia", "spain", "sweden", "switzerland", "turkey", "ukraine", "united-kingdom"),
	"europe-us": setOf("united-states", "canada", "mexico"),
	"global":    {},
}

var groupOrder = []string{"europe", "europe-us", "global"}

func init() {
	// europe-us spans everything europe does plus North America.
	for tok := range groupMembers["europe"] {
		groupMembers["europe-us"][tok] = true
	}
}

func setOf(tokens ...string) map[string]bool {
	m := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		m[t] = true
	}
	return m
}

// RegionTokens returns the broader grouping tokens a country token belongs
// to, in fallback preference order. Every token ultimately belongs to
// "global". A token that is itself a group returns only the groups broader
// than it.
func RegionTokens(token string) []string {
	switch token {
	case "global":
		return nil
	case "europe-us":
		return []string{"global"}
	case "europe":
		return []string{"europe-us", "global"}
	}
	var out []string
	for _, g := range groupOrder {
		if groupMembers[g][token] || g == "global" {
			out = append(out, g)
		}
	}
	return out
}
