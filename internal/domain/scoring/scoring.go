// Package scoring implements the weighted ranking formulas for supply candidates
// and donors. Scores are bounded to [0,1] and used only for ordering.
package scoring

import "math"

// SupplyPriority scores an inventory candidate from its distance, remaining
// shelf life and quantity on hand.
func (p *Params) SupplyPriority(distanceKm float64, daysUntilExpiry, quantity int) float64 {
	distanceScore := math.Max(0, 1-distanceKm/p.SupplyDistanceCapKm)
	expiryScore := clamp01(float64(daysUntilExpiry) / p.SupplyExpiryCapDays)
	quantityScore := clamp01(float64(quantity) / p.SupplyQuantityCap)

	return p.SupplyDistanceWeight*distanceScore +
		p.SupplyExpiryWeight*expiryScore +
		p.SupplyQuantityWeight*quantityScore
}

// DonorFactors are the inputs of a donor availability score.
// DaysSinceDonation is nil for a donor who has never donated and DistanceKm
// is nil when either side has no coordinate.
type DonorFactors struct {
	DaysSinceDonation *int
	DistanceKm        *float64
	Verified          bool
	HasHealthInfo     bool
}

// DonorAvailability scores a donor. The result is capped at 1.
func (p *Params) DonorAvailability(f DonorFactors) float64 {
	var recency float64
	if f.DaysSinceDonation != nil {
		recency = clamp01(float64(*f.DaysSinceDonation) / p.DonorRecencyCapDays)
	}

	var distanceScore float64
	if f.DistanceKm != nil {
		distanceScore = math.Max(0, 1-*f.DistanceKm/p.DonorDistanceCapKm)
	}

	score := p.DonorRecencyWeight*recency + p.DonorDistanceWeight*distanceScore
	if f.Verified {
		score += p.DonorVerifiedBonus
	}
	if f.HasHealthInfo {
		score += p.DonorHealthBonus
	}
	return math.Min(1, score)
}

// scoreEpsilon absorbs float summation error so that a score which is
// mathematically equal to the threshold does not pass it.
const scoreEpsilon = 1e-9

// PassesDonorThreshold reports whether score is strictly above the threshold.
func (p *Params) PassesDonorThreshold(score float64) bool {
	return score > p.DonorThreshold+scoreEpsilon
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
