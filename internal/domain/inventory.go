package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
)

// InventoryStatus represents the lifecycle state of an inventory unit.
type InventoryStatus string

// Valid inventory statuses.
const (
	InventoryAvailable InventoryStatus = "AVAILABLE"
	InventoryReserved  InventoryStatus = "RESERVED"
	InventoryUsed      InventoryStatus = "USED"
	InventoryExpired   InventoryStatus = "EXPIRED"
	InventoryTesting   InventoryStatus = "TESTING"
)

// Validate checks that the status is known.
func (s InventoryStatus) Validate() error {
	switch s {
	case InventoryAvailable, InventoryReserved, InventoryUsed, InventoryExpired, InventoryTesting:
		return nil
	default:
		return NewInputError("status", "unknown inventory status "+quote(string(s)))
	}
}

// Inventory validation errors
var (
	// ErrInventoryIDEmpty is returned when an inventory unit has no ID.
	ErrInventoryIDEmpty = errors.New("inventory unit ID cannot be empty")

	// ErrInventoryOwnerEmpty is returned when an inventory unit has no owning facility.
	ErrInventoryOwnerEmpty = errors.New("inventory unit owner cannot be empty")

	// ErrInventoryNegativeQuantity is returned when quantity is below zero.
	ErrInventoryNegativeQuantity = errors.New("inventory quantity cannot be negative")

	// ErrInventoryExpiryBeforeCollection is returned when expiry is not after collection.
	ErrInventoryExpiryBeforeCollection = errors.New("expiry date must be after collection date")
)

// InventoryUnit is a batch of one blood component held by a facility.
// Facility is nil when the owning facility has no recorded coordinate.
type InventoryUnit struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	OwnerName       string          `json:"owner_name"`
	BloodGroup      BloodGroup      `json:"blood_group"`
	ComponentType   ComponentType   `json:"component_type"`
	Quantity        int             `json:"quantity"`
	CollectionDate  time.Time       `json:"collection_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	StorageLocation string          `json:"storage_location"`
	BatchNumber     string          `json:"batch_number"`
	Facility        *geo.Point      `json:"facility,omitempty"`
	Status          InventoryStatus `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Validate checks the inventory invariants.
func (u *InventoryUnit) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInventoryIDEmpty
	}
	if u.OwnerID == uuid.Nil {
		return ErrInventoryOwnerEmpty
	}
	if err := u.BloodGroup.Validate(); err != nil {
		return err
	}
	if err := u.ComponentType.Validate(); err != nil {
		return err
	}
	if err := u.Status.Validate(); err != nil {
		return err
	}
	if u.Quantity < 0 {
		return ErrInventoryNegativeQuantity
	}
	if !u.ExpiryDate.After(u.CollectionDate) {
		return ErrInventoryExpiryBeforeCollection
	}
	if u.Facility != nil {
		if err := u.Facility.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DaysUntilExpiry returns the whole days from today until the unit expires.
// Zero or negative means the unit is expired.
func (u *InventoryUnit) DaysUntilExpiry(today time.Time) int {
	return DaysBetween(today, u.ExpiryDate)
}

// Consume removes qty units. When the remaining quantity reaches zero the
// unit transitions to USED; units are never deleted.
func (u *InventoryUnit) Consume(qty int, now time.Time) error {
	if qty <= 0 {
		return NewInputError("quantity", "must be positive")
	}
	if u.Status != InventoryAvailable && u.Status != InventoryReserved {
		return fmt.Errorf("%w: unit is %s", ErrInvalidTransition, strings.ToLower(string(u.Status)))
	}
	if qty > u.Quantity {
		return fmt.Errorf("%w: requested %d, remaining %d", ErrInsufficientQuantity, qty, u.Quantity)
	}

	u.Quantity -= qty
	if u.Quantity == 0 {
		u.Status = InventoryUsed
	}
	u.UpdatedAt = now.UTC()
	return nil
}
