package rules

import (
	"time"

	"github.com/phrazzld/lifeline-api/internal/domain"
)

// DefaultDonationIntervalDays applies to components without a dedicated interval.
const DefaultDonationIntervalDays = 56

var donationIntervalDays = map[domain.ComponentType]int{
	domain.ComponentWholeBlood: 56,
	domain.ComponentPlasma:     28,
	domain.ComponentPlatelets:  7,
}

// DonationInterval returns the minimum number of days between two donations
// of the given component.
func DonationInterval(component domain.ComponentType) int {
	if days, ok := donationIntervalDays[component]; ok {
		return days
	}
	return DefaultDonationIntervalDays
}

// IsDonationEligible reports whether a donor whose last donation was on
// lastDonation may donate component on today. A donor who has never donated
// is always eligible.
func IsDonationEligible(lastDonation *time.Time, component domain.ComponentType, today time.Time) bool {
	if lastDonation == nil {
		return true
	}
	return domain.DaysBetween(*lastDonation, today) >= DonationInterval(component)
}
