// Package geo provides the great-circle distance used by every proximity score
// in the system. Distances are always kilometres derived from the haversine
// central angle scaled by the mean Earth radius.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used to scale the central angle.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// CoordinateError describes which component of a coordinate was rejected.
type CoordinateError struct {
	Field string
	Value float64
}

// Error implements the error interface for CoordinateError.
func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%s: %s %v out of range", ErrInvalidCoordinate, e.Field, e.Value)
}

// Unwrap returns ErrInvalidCoordinate so callers can use errors.Is.
func (e *CoordinateError) Unwrap() error {
	return ErrInvalidCoordinate
}

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// NewPoint creates a validated Point.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks that latitude is within [-90, 90] and longitude within [-180, 180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return &CoordinateError{Field: "latitude", Value: p.Lat}
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return &CoordinateError{Field: "longitude", Value: p.Lon}
	}
	return nil
}

// Distance returns the haversine distance between a and b in kilometres.
// Both points are validated first.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return EarthRadiusKm * centralAngle(a, b), nil
}

// centralAngle computes the haversine central angle in radians.
func centralAngle(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon) - toRadians(a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RoundKm rounds a distance to two decimal places for presentation.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
