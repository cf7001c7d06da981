package domain

import (
	"strings"
	"time"
)

// BloodGroup is an ABO/Rh blood classification.
type BloodGroup string

// Valid blood groups.
const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
)

// BloodGroups lists every valid blood group in canonical order.
var BloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupOPos, BloodGroupONeg,
	BloodGroupABPos, BloodGroupABNeg,
}

// Validate checks that the blood group is one of the known groups.
func (g BloodGroup) Validate() error {
	for _, known := range BloodGroups {
		if g == known {
			return nil
		}
	}
	return NewInputError("blood_group", "unknown blood group "+quote(string(g)))
}

// ParseBloodGroup normalises and validates a blood group string.
func ParseBloodGroup(s string) (BloodGroup, error) {
	g := BloodGroup(strings.ToUpper(strings.TrimSpace(s)))
	if err := g.Validate(); err != nil {
		return "", err
	}
	return g, nil
}

// ComponentType is a separable blood product.
type ComponentType string

// Valid component types.
const (
	ComponentWholeBlood      ComponentType = "WHOLE_BLOOD"
	ComponentRBC             ComponentType = "RBC"
	ComponentPlasma          ComponentType = "PLASMA"
	ComponentPlatelets       ComponentType = "PLATELETS"
	ComponentCryoprecipitate ComponentType = "CRYOPRECIPITATE"
)

// ComponentTypes lists every valid component type in canonical order.
var ComponentTypes = []ComponentType{
	ComponentWholeBlood,
	ComponentRBC,
	ComponentPlasma,
	ComponentPlatelets,
	ComponentCryoprecipitate,
}

// Validate checks that the component type is one of the known components.
func (c ComponentType) Validate() error {
	for _, known := range ComponentTypes {
		if c == known {
			return nil
		}
	}
	return NewInputError("component_type", "unknown component type "+quote(string(c)))
}

// ParseComponentType normalises and validates a component type string.
func ParseComponentType(s string) (ComponentType, error) {
	c := ComponentType(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

// defaultShelfLifeDays applies to components without a dedicated entry.
const defaultShelfLifeDays = 35

var shelfLifeDays = map[ComponentType]int{
	ComponentWholeBlood:      35,
	ComponentRBC:             42,
	ComponentPlasma:          365, // frozen
	ComponentPlatelets:       5,
	ComponentCryoprecipitate: 365,
}

// ShelfLife returns the number of days a component stays usable after collection.
func ShelfLife(c ComponentType) int {
	if days, ok := shelfLifeDays[c]; ok {
		return days
	}
	return defaultShelfLifeDays
}

// DefaultExpiry derives an expiry date from the collection date and component shelf life.
func DefaultExpiry(collected time.Time, c ComponentType) time.Time {
	return StartOfDay(collected).AddDate(0, 0, ShelfLife(c))
}

func quote(s string) string {
	return `"` + s + `"`
}
