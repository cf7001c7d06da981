package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
)

// Donor is a registered blood donor as seen by the matcher.
// Location is nil when the donor has no recorded coordinate, and
// LastDonationDate is nil when the donor has never donated.
type Donor struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	BloodGroup       BloodGroup `json:"blood_group"`
	City             string     `json:"city"`
	Location         *geo.Point `json:"location,omitempty"`
	Available        bool       `json:"available"`
	Verified         bool       `json:"verified"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	HasHealthInfo    bool       `json:"has_health_info"`
}

// FullName joins the donor's first and last names.
func (d *Donor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
