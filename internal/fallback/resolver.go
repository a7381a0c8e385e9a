// Package fallback selects a substitute reseller package when the primary
// slug is rejected upstream. Selection is a structured search over the
// catalog snapshot, never trial-and-error API calls.
package fallback

import (
	"math"
	"regexp"

	"esim-service/internal/countries"
	"esim-service/internal/domain"
)

type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve picks a substitute slug for the package, in preference order:
// same country and duration, then the regional bundles the country belongs
// to, then any catalog entry covering the purchased duration. A substitute
// never carries less data than the customer paid for. Every returned slug
// exists in the supplied catalog.
func (r *Resolver) Resolve(pkg *domain.Package, catalog []domain.ResellerPackage) (string, error) {
	token, ok := countries.Canonical(pkg.CountryName)
	if !ok {
		token, ok = countries.Canonical(pkg.CountryCode)
	}
	if !ok {
		return "", domain.ErrNoFallbackAvailable
	}

	days := pkg.ValidityDays
	if days <= 0 {
		days = 30
	}

	if best := pick(catalog, token, days, false, pkg.DataAmountGB); best != "" {
		return best, nil
	}

	for _, region := range countries.RegionTokens(token) {
		if best := pick(catalog, region, days, false, pkg.DataAmountGB); best != "" {
			return best, nil
		}
	}

	// Degraded-service path: any country, duration at least as long as
	// purchased. The caller records the substitution for audit.
	if best := pick(catalog, "", days, true, pkg.DataAmountGB); best != "" {
		return best, nil
	}

	return "", domain.ErrNoFallbackAvailable
}

// pick returns the candidate with the smallest data tier at or above wantGB.
// An unlimited candidate satisfies any request but sorts above every finite
// tier. A wantGB of 0 (unlimited purchased) only accepts unlimited.
func pick(catalog []domain.ResellerPackage, token string, days int, relaxDays bool, wantGB float64) string {
	var best *domain.ResellerPackage
	bestData := math.Inf(1)
	bestDays := math.MaxInt

	for i := range catalog {
		c := &catalog[i]
		if token != "" && candidateToken(c) != token {
			continue
		}
		if relaxDays {
			if c.ValidityDays < days {
				continue
			}
		} else if c.ValidityDays != days {
			continue
		}

		data := c.DataAmountGB
		if c.Unlimited() {
			data = math.Inf(1)
		} else if wantGB == 0 || data < wantGB {
			continue
		}

		if data < bestData || (data == bestData && c.ValidityDays < bestDays) {
			best = c
			bestData = data
			bestDays = c.ValidityDays
		}
	}

	if best == nil {
		return ""
	}
	return best.Slug
}

var slugCountry = regexp.MustCompile(`^esim-(.+)-\d+days-`)

func candidateToken(c *domain.ResellerPackage) string {
	if tok, ok := countries.Canonical(c.Country); ok {
		return tok
	}
	if tok, ok := countries.Canonical(c.CountryCode); ok {
		return tok
	}
	if m := slugCountry.FindStringSubmatch(c.Slug); m != nil {
		return m[1]
	}
	return ""
}
