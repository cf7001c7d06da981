package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
)

// FacilityKind distinguishes the organisations that hold or request blood.
type FacilityKind string

// Facility kinds.
const (
	FacilityHospital  FacilityKind = "HOSPITAL"
	FacilityBloodBank FacilityKind = "BLOOD_BANK"
)

// ErrFacilityNameEmpty is returned when a facility has no name.
var ErrFacilityNameEmpty = errors.New("facility name cannot be empty")

// Facility is a hospital or blood bank. Inventory units inherit its coordinate.
type Facility struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Kind     FacilityKind `json:"kind"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	City     string       `json:"city"`
	Location *geo.Point   `json:"location,omitempty"`
	Verified bool         `json:"verified"`
}

// Validate checks the facility fields.
func (f *Facility) Validate() error {
	if f.ID == uuid.Nil {
		return NewInputError("id", "cannot be empty")
	}
	if strings.TrimSpace(f.Name) == "" {
		return ErrFacilityNameEmpty
	}
	if f.Kind != FacilityHospital && f.Kind != FacilityBloodBank {
		return NewInputError("kind", "unknown facility kind "+quote(string(f.Kind)))
	}
	if f.Location != nil {
		if err := f.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}
