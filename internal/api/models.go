package api

import (
	"github.com/phrazzld/lifeline-api/internal/service/matching"
)

// NearestSupplyRequest is the body of POST /api/supply/nearest.
type NearestSupplyRequest struct {
	Lat           *float64 `json:"lat" validate:"required"`
	Lon           *float64 `json:"lon" validate:"required"`
	BloodGroup    string   `json:"blood_group" validate:"required"`
	ComponentType string   `json:"component_type" validate:"required"`
	MinQuantity   int      `json:"min_quantity" validate:"gte=0"`
}

func (r NearestSupplyRequest) toFacade() matching.SupplyRequest {
	return matching.SupplyRequest{
		Lat:           *r.Lat,
		Lon:           *r.Lon,
		BloodGroup:    r.BloodGroup,
		ComponentType: r.ComponentType,
		MinQuantity:   r.MinQuantity,
	}
}

// DonorMatchRequest is the body of POST /api/donors/match. The hospital
// coordinate is optional.
type DonorMatchRequest struct {
	BloodGroup   string   `json:"blood_group" validate:"required"`
	HospitalCity string   `json:"hospital_city" validate:"required"`
	HospitalLat  *float64 `json:"hospital_lat"`
	HospitalLon  *float64 `json:"hospital_lon"`
}

func (r DonorMatchRequest) toFacade() matching.DonorRequest {
	return matching.DonorRequest{
		BloodGroup:   r.BloodGroup,
		HospitalCity: r.HospitalCity,
		HospitalLat:  r.HospitalLat,
		HospitalLon:  r.HospitalLon,
	}
}

// DemandForecastRequest is the body of POST /api/forecast/demand. The
// facade enforces the days_ahead range so the failure names the field
// the same way for every caller.
type DemandForecastRequest struct {
	BloodGroup    string `json:"blood_group" validate:"required"`
	ComponentType string `json:"component_type" validate:"required"`
	Location      string `json:"location"`
	DaysAhead     int    `json:"days_ahead"`
}

func (r DemandForecastRequest) toFacade() matching.DemandRequest {
	return matching.DemandRequest{
		BloodGroup:    r.BloodGroup,
		ComponentType: r.ComponentType,
		Location:      r.Location,
		DaysAhead:     r.DaysAhead,
	}
}

// BloodSearchRequest is the body of POST /api/blood/search.
type BloodSearchRequest struct {
	NearestSupplyRequest
	City string `json:"city"`
}

func (r BloodSearchRequest) toFacade() matching.SearchRequest {
	return matching.SearchRequest{
		SupplyRequest: r.NearestSupplyRequest.toFacade(),
		City:          r.City,
	}
}

// RetrainRequest is the optional body of POST /api/forecast/train.
type RetrainRequest struct {
	HistoryDays int    `json:"history_days" validate:"gte=0,lte=3650"`
	RequestedBy string `json:"requested_by" validate:"max=64"`
}

// TaskAcceptedResponse is returned when a background task is queued.
type TaskAcceptedResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}
