package scoring

// Params defines the weights, normalisation caps and thresholds used to rank
// supply candidates and donors.
type Params struct {
	// Supply priority weights
	SupplyDistanceWeight float64
	SupplyExpiryWeight   float64
	SupplyQuantityWeight float64

	// Supply normalisation caps
	SupplyDistanceCapKm float64
	SupplyExpiryCapDays float64
	SupplyQuantityCap   float64
	SupplyCandidatePool int

	// Donor availability weights
	DonorRecencyWeight  float64
	DonorDistanceWeight float64
	DonorVerifiedBonus  float64
	DonorHealthBonus    float64

	// Donor normalisation caps
	DonorRecencyCapDays float64
	DonorDistanceCapKm  float64

	// Donor selection
	DonorThreshold   float64
	DonorResultLimit int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		SupplyDistanceWeight: 0.4,
		SupplyExpiryWeight:   0.3,
		SupplyQuantityWeight: 0.3,

		SupplyDistanceCapKm: 100,
		SupplyExpiryCapDays: 30,
		SupplyQuantityCap:   10,
		SupplyCandidatePool: 5,

		DonorRecencyWeight:  0.3,
		DonorDistanceWeight: 0.4,
		DonorVerifiedBonus:  0.2,
		DonorHealthBonus:    0.1,

		DonorRecencyCapDays: 56,
		DonorDistanceCapKm:  50,

		// Scores must strictly exceed the threshold
		DonorThreshold:   0.3,
		DonorResultLimit: 10,
	}
}

// WithSupplyPool returns a copy of p with a different supply candidate pool size.
func (p Params) WithSupplyPool(n int) *Params {
	if n > 0 {
		p.SupplyCandidatePool = n
	}
	return &p
}

// WithDonorSelection returns a copy of p with a different donor threshold and result cap.
func (p Params) WithDonorSelection(threshold float64, limit int) *Params {
	if threshold >= 0 {
		p.DonorThreshold = threshold
	}
	if limit > 0 {
		p.DonorResultLimit = limit
	}
	return &p
}
