package rules

import (
	"testing"
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsDonationEligible(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	daysAgo := func(n int) *time.Time {
		d := today.AddDate(0, 0, -n)
		return &d
	}

	testCases := []struct {
		name      string
		last      *time.Time
		component domain.ComponentType
		expected  bool
	}{
		{"never donated", nil, domain.ComponentWholeBlood, true},
		{"never donated platelets", nil, domain.ComponentPlatelets, true},
		{"whole blood 55 days ago", daysAgo(55), domain.ComponentWholeBlood, false},
		{"whole blood 56 days ago", daysAgo(56), domain.ComponentWholeBlood, true},
		{"whole blood 120 days ago", daysAgo(120), domain.ComponentWholeBlood, true},
		{"plasma 27 days ago", daysAgo(27), domain.ComponentPlasma, false},
		{"plasma 28 days ago", daysAgo(28), domain.ComponentPlasma, true},
		{"platelets 6 days ago", daysAgo(6), domain.ComponentPlatelets, false},
		{"platelets 7 days ago", daysAgo(7), domain.ComponentPlatelets, true},
		{"rbc uses default interval", daysAgo(55), domain.ComponentRBC, false},
		{"unknown component uses default interval", daysAgo(56), domain.ComponentType("SERUM"), true},
		{"donated today", daysAgo(0), domain.ComponentWholeBlood, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, IsDonationEligible(tc.last, tc.component, today))
		})
	}
}

func TestIsDonationEligible_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	today := time.Date(2025, 6, 15, 0, 5, 0, 0, time.UTC)
	last := time.Date(2025, 4, 20, 23, 55, 0, 0, time.UTC) // 56 calendar days earlier

	assert.True(t, IsDonationEligible(&last, domain.ComponentWholeBlood, today))
}

func TestDonationInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 56, DonationInterval(domain.ComponentWholeBlood))
	assert.Equal(t, 28, DonationInterval(domain.ComponentPlasma))
	assert.Equal(t, 7, DonationInterval(domain.ComponentPlatelets))
	assert.Equal(t, DefaultDonationIntervalDays, DonationInterval(domain.ComponentCryoprecipitate))
}
