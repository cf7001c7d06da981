// Package fixtures loads demonstration data from YAML and writes it
// through the store interfaces.
package fixtures

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Seed is the root of a seed file. Entries refer to each other by Key,
// and all dates are expressed relative to the day the seed is applied.
type Seed struct {
	Facilities []FacilitySeed  `yaml:"facilities" validate:"dive"`
	Donors     []DonorSeed     `yaml:"donors" validate:"dive"`
	Inventory  []InventorySeed `yaml:"inventory" validate:"dive"`
	Requests   []RequestSeed   `yaml:"requests" validate:"dive"`
	History    []HistorySeed   `yaml:"history" validate:"dive"`
}

// Coordinate is a decimal latitude/longitude pair.
type Coordinate struct {
	Lat decimal.Decimal `yaml:"lat"`
	Lon decimal.Decimal `yaml:"lon"`
}

// FacilitySeed describes a hospital or blood bank.
type FacilitySeed struct {
	Key      string      `yaml:"key" validate:"required"`
	Name     string      `yaml:"name" validate:"required"`
	Kind     string      `yaml:"kind" validate:"required,oneof=HOSPITAL BLOOD_BANK"`
	Email    string      `yaml:"email" validate:"required,email"`
	Phone    string      `yaml:"phone"`
	City     string      `yaml:"city" validate:"required"`
	Location *Coordinate `yaml:"location"`
	Verified bool        `yaml:"verified"`
}

// DonorSeed describes a registered donor. A nil LastDonatedDaysAgo means
// the donor has never donated.
type DonorSeed struct {
	Key                string      `yaml:"key" validate:"required"`
	FirstName          string      `yaml:"first_name" validate:"required"`
	LastName           string      `yaml:"last_name"`
	Email              string      `yaml:"email" validate:"required,email"`
	Phone              string      `yaml:"phone"`
	BloodGroup         string      `yaml:"blood_group" validate:"required"`
	City               string      `yaml:"city" validate:"required"`
	Location           *Coordinate `yaml:"location"`
	Available          bool        `yaml:"available"`
	Verified           bool        `yaml:"verified"`
	HealthInfo         bool        `yaml:"health_info"`
	LastDonatedDaysAgo *int        `yaml:"last_donated_days_ago" validate:"omitempty,gte=0"`
}

// InventorySeed describes a stored batch owned by a facility.
type InventorySeed struct {
	Key              string `yaml:"key" validate:"required"`
	Owner            string `yaml:"owner" validate:"required"`
	BloodGroup       string `yaml:"blood_group" validate:"required"`
	ComponentType    string `yaml:"component_type" validate:"required"`
	Quantity         int    `yaml:"quantity" validate:"gte=0"`
	CollectedDaysAgo int    `yaml:"collected_days_ago" validate:"gte=0"`
	ExpiresInDays    *int   `yaml:"expires_in_days"`
	Status           string `yaml:"status"`
	StorageLocation  string `yaml:"storage_location"`
	BatchNumber      string `yaml:"batch_number"`
}

// RequestSeed describes a single hospital request.
type RequestSeed struct {
	Key              string `yaml:"key" validate:"required"`
	Hospital         string `yaml:"hospital" validate:"required"`
	BloodGroup       string `yaml:"blood_group" validate:"required"`
	ComponentType    string `yaml:"component_type" validate:"required"`
	QuantityRequired int    `yaml:"quantity_required" validate:"gt=0"`
	Urgency          string `yaml:"urgency" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	RequiredInDays   int    `yaml:"required_in_days" validate:"gte=0"`
	CreatedDaysAgo   int    `yaml:"created_days_ago" validate:"gte=0"`
	Status           string `yaml:"status"`
}

// HistorySeed expands into one request per day for the trailing Days days,
// giving the forecasters something to learn from.
type HistorySeed struct {
	Hospital      string `yaml:"hospital" validate:"required"`
	BloodGroup    string `yaml:"blood_group" validate:"required"`
	ComponentType string `yaml:"component_type" validate:"required"`
	Days          int    `yaml:"days" validate:"gt=0,lte=730"`
	Quantity      int    `yaml:"quantity" validate:"gt=0"`
	// WeekendQuantity overrides Quantity on Saturdays and Sundays when set.
	WeekendQuantity int    `yaml:"weekend_quantity" validate:"gte=0"`
	Status          string `yaml:"status"`
}

// Load decodes and validates a seed document. Unknown fields are rejected.
func Load(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if err == io.EOF {
			return &seed, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	if err := validator.New().Struct(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	if err := seed.checkReferences(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// LoadFile reads a seed document from path.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Load(bytes.NewReader(data))
}

func (s *Seed) checkReferences() error {
	kinds := make(map[string]string, len(s.Facilities))
	for _, f := range s.Facilities {
		if _, dup := kinds[f.Key]; dup {
			return fmt.Errorf("invalid seed: duplicate facility key %q", f.Key)
		}
		kinds[f.Key] = f.Kind
	}

	seen := make(map[string]bool)
	for _, d := range s.Donors {
		if seen[d.Key] {
			return fmt.Errorf("invalid seed: duplicate donor key %q", d.Key)
		}
		seen[d.Key] = true
	}

	for _, inv := range s.Inventory {
		if _, ok := kinds[inv.Owner]; !ok {
			return fmt.Errorf("invalid seed: inventory %q references unknown facility %q", inv.Key, inv.Owner)
		}
	}
	for _, r := range s.Requests {
		if kinds[r.Hospital] != "HOSPITAL" {
			return fmt.Errorf("invalid seed: request %q references unknown hospital %q", r.Key, r.Hospital)
		}
	}
	for i, h := range s.History {
		if kinds[h.Hospital] != "HOSPITAL" {
			return fmt.Errorf("invalid seed: history[%d] references unknown hospital %q", i, h.Hospital)
		}
	}
	return nil
}
