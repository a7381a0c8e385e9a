package fallback

import (
	"testing"

	"esim-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greecePackage(gb float64, days int) *domain.Package {
	return &domain.Package{
		ID:           "pkg-1",
		Name:         "Greece eSIM",
		CountryName:  "Greece",
		CountryCode:  "GR",
		DataAmountGB: gb,
		ValidityDays: days,
	}
}

func TestResolvePrefersSameCountryNearestTierAbove(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-greece-30days-1gb-all", Country: "Greece", DataAmountGB: 1, ValidityDays: 30},
		{Slug: "esim-greece-30days-3gb-all", Country: "Greece", DataAmountGB: 3, ValidityDays: 30},
		{Slug: "esim-greece-30days-10gb-all", Country: "Greece", DataAmountGB: 10, ValidityDays: 30},
		{Slug: "esim-europe-30days-3gb-all", Country: "Europe", DataAmountGB: 3, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(2, 30), catalog)
	require.NoError(t, err)
	assert.Equal(t, "esim-greece-30days-3gb-all", got)
}

func TestResolveNeverSubstitutesLessData(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-greece-30days-1gb-all", Country: "Greece", DataAmountGB: 1, ValidityDays: 30},
		{Slug: "esim-greece-30days-3gb-all", Country: "Greece", DataAmountGB: 3, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(5, 30), catalog)
	// Nothing in-country or regional holds 5GB, and the last-resort pass
	// must not hand out a smaller allowance either.
	assert.Empty(t, got)
	assert.ErrorIs(t, err, domain.ErrNoFallbackAvailable)
}

func TestResolveUnlimitedSatisfiesFiniteRequestLast(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-greece-30days-ungb-all", Country: "Greece", DataAmountGB: 0, ValidityDays: 30},
		{Slug: "esim-greece-30days-5gb-all", Country: "Greece", DataAmountGB: 5, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(2, 30), catalog)
	require.NoError(t, err)
	// The finite 5GB tier sorts before unlimited.
	assert.Equal(t, "esim-greece-30days-5gb-all", got)
}

func TestResolveUnlimitedRequestOnlyAcceptsUnlimited(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-greece-30days-50gb-all", Country: "Greece", DataAmountGB: 50, ValidityDays: 30},
		{Slug: "esim-greece-30days-ungb-all", Country: "Greece", DataAmountGB: 0, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(0, 30), catalog)
	require.NoError(t, err)
	assert.Equal(t, "esim-greece-30days-ungb-all", got)
}

func TestResolveFallsBackToRegionalBundle(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-albania-30days-3gb-all", Country: "Albania", DataAmountGB: 3, ValidityDays: 30},
		{Slug: "esim-europe-30days-3gb-all", Country: "Europe", DataAmountGB: 3, ValidityDays: 30},
		{Slug: "esim-europe-us-30days-3gb-all", Country: "Europe & United States", DataAmountGB: 3, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(1, 30), catalog)
	require.NoError(t, err)
	// europe precedes europe-us in the grouping order.
	assert.Equal(t, "esim-europe-30days-3gb-all", got)
}

func TestResolveLastResortRelaxesCountryAndDuration(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-afghanistan-30days-3gb-all", Country: "Afghanistan", DataAmountGB: 3, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(greecePackage(1, 30), catalog)
	require.NoError(t, err)
	assert.Equal(t, "esim-afghanistan-30days-3gb-all", got)
}

func TestResolveDurationMustCoverPurchase(t *testing.T) {
	catalog := []domain.ResellerPackage{
		{Slug: "esim-afghanistan-7days-10gb-all", Country: "Afghanistan", DataAmountGB: 10, ValidityDays: 7},
	}

	_, err := NewResolver().Resolve(greecePackage(1, 30), catalog)
	assert.ErrorIs(t, err, domain.ErrNoFallbackAvailable)
}

func TestResolveEmptyCatalog(t *testing.T) {
	_, err := NewResolver().Resolve(greecePackage(1, 30), nil)
	assert.ErrorIs(t, err, domain.ErrNoFallbackAvailable)
}

func TestResolveRegionalPackagePrefersOwnRegionEntries(t *testing.T) {
	pkg := &domain.Package{
		ID:           "pkg-eu",
		Name:         "Europe & United States eSIM Package",
		CountryName:  "Europe & United States",
		CountryCode:  "EUUS",
		DataAmountGB: 3,
		ValidityDays: 30,
	}
	catalog := []domain.ResellerPackage{
		{Slug: "esim-europe-us-30days-5gb-all", Country: "Europe & United States", DataAmountGB: 5, ValidityDays: 30},
		{Slug: "esim-global-30days-3gb-all", Country: "Global", DataAmountGB: 3, ValidityDays: 30},
	}

	got, err := NewResolver().Resolve(pkg, catalog)
	require.NoError(t, err)
	assert.Equal(t, "esim-europe-us-30days-5gb-all", got)
}
