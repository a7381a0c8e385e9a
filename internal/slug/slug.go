// Package slug derives and validates reseller package identifiers of the
// canonical shape esim-<country>-<days>days-<data>gb-<plan>.
package slug

import (
	"fmt"
	"math"
	"strings"

	"esim-service/internal/countries"
	"esim-service/internal/domain"
)

const (
	prefix         = "esim"
	defaultDays    = 30
	defaultPlan    = "all"
	unlimitedToken = "ungb"
)

// Derive builds the canonical reseller slug for a local package. Country
// naming is resolved through the countries table; the display name wins over
// the code so regional bundle labels map correctly.
func Derive(pkg *domain.Package) (string, error) {
	if pkg.DataAmountGB < 0 {
		return "", &domain.ValidationError{Field: "dataAmountGb", Reason: "must be >= 0"}
	}

	token, ok := countries.Canonical(pkg.CountryName)
	if !ok {
		token, ok = countries.Canonical(pkg.CountryCode)
	}
	if !ok {
		return "", &domain.ValidationError{Field: "country", Reason: fmt.Sprintf("no canonical token for %q/%q", pkg.CountryName, pkg.CountryCode)}
	}

	days := pkg.ValidityDays
	if days <= 0 {
		days = defaultDays
	}

	plan := pkg.PlanType
	if plan == "" {
		plan = defaultPlan
	}

	return fmt.Sprintf("%s-%s-%ddays-%s-%s", prefix, token, days, dataToken(pkg.DataAmountGB), plan), nil
}

// dataToken truncates, never rounds: 1.5 GB is sold as the 1gb tier. Callers
// that want a specific displayed tier must round the stored value upstream.
func dataToken(gb float64) string {
	if gb == 0 {
		return unlimitedToken
	}
	return fmt.Sprintf("%dgb", int(math.Floor(gb)))
}

// Validate reports whether the slug appears verbatim in the given reseller
// catalog snapshot. A miss is not an error; it is the trigger for fallback
// resolution.
func Validate(s string, catalog []domain.ResellerPackage) bool {
	for i := range catalog {
		if catalog[i].Slug == s {
			return true
		}
	}
	return false
}

// WellFormed is a cheap shape check used by the sync job to flag
// hand-authored slugs without an API round trip.
func WellFormed(s string) bool {
	if !strings.HasPrefix(s, prefix+"-") {
		return false
	}
	if !strings.Contains(s, "days-") {
		return false
	}
	if s != strings.ToLower(s) || strings.Contains(s, " ") {
		return false
	}
	return true
}
