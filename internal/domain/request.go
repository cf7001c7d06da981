package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
)

// Urgency expresses how quickly a request has to be fulfilled.
type Urgency string

// Valid urgency levels.
const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// Validate checks that the urgency is known.
func (u Urgency) Validate() error {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return nil
	default:
		return NewInputError("urgency", "unknown urgency "+quote(string(u)))
	}
}

// RequestStatus is the lifecycle state of a donation request.
type RequestStatus string

// Valid request statuses.
const (
	RequestPending   RequestStatus = "PENDING"
	RequestApproved  RequestStatus = "APPROVED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCancelled RequestStatus = "CANCELLED"
	RequestFulfilled RequestStatus = "FULFILLED"
)

// Validate checks that the status is known.
func (s RequestStatus) Validate() error {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCancelled, RequestFulfilled:
		return nil
	default:
		return NewInputError("status", "unknown request status "+quote(string(s)))
	}
}

// CanTransitionTo reports whether a request may move from s to next.
// Only pending requests change state; every other status is terminal.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s != RequestPending {
		return false
	}
	switch next {
	case RequestApproved, RequestRejected, RequestCancelled, RequestFulfilled:
		return true
	default:
		return false
	}
}

// DonationRequest is a hospital's request for blood.
type DonationRequest struct {
	ID               uuid.UUID     `json:"id"`
	HospitalID       uuid.UUID     `json:"hospital_id"`
	BloodGroup       BloodGroup    `json:"blood_group"`
	ComponentType    ComponentType `json:"component_type"`
	QuantityRequired int           `json:"quantity_required"`
	Urgency          Urgency       `json:"urgency"`
	City             string        `json:"city"`
	Location         *geo.Point    `json:"location,omitempty"`
	RequiredBy       time.Time     `json:"required_by"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewDonationRequest creates a pending request and validates it.
func NewDonationRequest(
	hospitalID uuid.UUID,
	group BloodGroup,
	component ComponentType,
	quantity int,
	urgency Urgency,
	city string,
	requiredBy time.Time,
) (*DonationRequest, error) {
	now := time.Now().UTC()
	req := &DonationRequest{
		ID:               uuid.New(),
		HospitalID:       hospitalID,
		BloodGroup:       group,
		ComponentType:    component,
		QuantityRequired: quantity,
		Urgency:          urgency,
		City:             city,
		RequiredBy:       requiredBy.UTC(),
		Status:           RequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks the request invariants.
func (r *DonationRequest) Validate() error {
	if r.ID == uuid.Nil {
		return NewInputError("id", "cannot be empty")
	}
	if r.HospitalID == uuid.Nil {
		return NewInputError("hospital_id", "cannot be empty")
	}
	if err := r.BloodGroup.Validate(); err != nil {
		return err
	}
	if err := r.ComponentType.Validate(); err != nil {
		return err
	}
	if r.QuantityRequired <= 0 {
		return NewInputError("quantity_required", "must be positive")
	}
	if err := r.Urgency.Validate(); err != nil {
		return err
	}
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TransitionTo moves the request to next if the lifecycle allows it.
func (r *DonationRequest) TransitionTo(next RequestStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now.UTC()
	return nil
}

// ForecastRecord is one historical completed request used for demand forecasting.
type ForecastRecord struct {
	Date          time.Time     `json:"date"`
	BloodGroup    BloodGroup    `json:"blood_group"`
	ComponentType ComponentType `json:"component_type"`
	Quantity      int           `json:"quantity"`
	City          string        `json:"city,omitempty"`
}
