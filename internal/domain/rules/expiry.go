package rules

// RiskLevel buckets the remaining shelf life of an inventory unit.
type RiskLevel string

// Expiry risk levels, most urgent first.
const (
	RiskExpired  RiskLevel = "EXPIRED"
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
	RiskSafe     RiskLevel = "SAFE"
)

// Assessment is the result of classifying a unit's remaining shelf life.
type Assessment struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	Confidence      float64   `json:"confidence"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	SuggestedAction string    `json:"suggested_action"`
}

type expiryBand struct {
	maxDays    int
	level      RiskLevel
	confidence float64
	action     string
}

// Evaluated in order; the first band whose upper bound is not exceeded wins.
var expiryBands = []expiryBand{
	{0, RiskExpired, 1.00, "Immediate disposal required"},
	{3, RiskCritical, 0.95, "Use immediately or transfer to nearby facilities"},
	{7, RiskHigh, 0.85, "Prioritize usage in next 3 days"},
	{14, RiskMedium, 0.70, "Schedule for upcoming requests"},
	{30, RiskLow, 0.50, "Monitor regularly"},
}

var safeAssessment = expiryBand{level: RiskSafe, confidence: 0.30, action: "Standard inventory"}

// ClassifyExpiry maps the number of days until expiry to a risk assessment.
// It is total over all integers; zero and negative values are EXPIRED.
func ClassifyExpiry(daysUntilExpiry int) Assessment {
	band := safeAssessment
	for _, b := range expiryBands {
		if daysUntilExpiry <= b.maxDays {
			band = b
			break
		}
	}
	return Assessment{
		RiskLevel:       band.level,
		Confidence:      band.confidence,
		DaysUntilExpiry: daysUntilExpiry,
		SuggestedAction: band.action,
	}
}
