package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyExpiry(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		days       int
		level      RiskLevel
		confidence float64
		action     string
	}{
		{-5, RiskExpired, 1.00, "Immediate disposal required"},
		{0, RiskExpired, 1.00, "Immediate disposal required"},
		{1, RiskCritical, 0.95, "Use immediately or transfer to nearby facilities"},
		{3, RiskCritical, 0.95, "Use immediately or transfer to nearby facilities"},
		{4, RiskHigh, 0.85, "Prioritize usage in next 3 days"},
		{7, RiskHigh, 0.85, "Prioritize usage in next 3 days"},
		{8, RiskMedium, 0.70, "Schedule for upcoming requests"},
		{14, RiskMedium, 0.70, "Schedule for upcoming requests"},
		{15, RiskLow, 0.50, "Monitor regularly"},
		{30, RiskLow, 0.50, "Monitor regularly"},
		{31, RiskSafe, 0.30, "Standard inventory"},
		{365, RiskSafe, 0.30, "Standard inventory"},
	}

	for _, tc := range testCases {
		got := ClassifyExpiry(tc.days)
		assert.Equal(t, tc.level, got.RiskLevel, "days=%d", tc.days)
		assert.InDelta(t, tc.confidence, got.Confidence, 1e-9, "days=%d", tc.days)
		assert.Equal(t, tc.action, got.SuggestedAction, "days=%d", tc.days)
		assert.Equal(t, tc.days, got.DaysUntilExpiry)
	}
}

func TestClassifyExpiry_Monotonic(t *testing.T) {
	t.Parallel()

	order := map[RiskLevel]int{
		RiskExpired: 0, RiskCritical: 1, RiskHigh: 2, RiskMedium: 3, RiskLow: 4, RiskSafe: 5,
	}
	prev := order[ClassifyExpiry(-100).RiskLevel]
	for d := -99; d <= 100; d++ {
		cur := order[ClassifyExpiry(d).RiskLevel]
		assert.GreaterOrEqual(t, cur, prev, "risk must not increase as days grow (days=%d)", d)
		prev = cur
	}
}
