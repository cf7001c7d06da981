package postgres

import (
	"github.com/phrazzld/lifeline-api/internal/domain/geo"
	"github.com/shopspring/decimal"
)

// Coordinates are stored as NUMERIC(9,6); this many places are kept on write.
const coordinatePlaces = 6

// pointFromColumns turns a nullable latitude/longitude pair into a point.
// A half-null pair is treated as no coordinate.
func pointFromColumns(lat, lon decimal.NullDecimal) *geo.Point {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &geo.Point{
		Lat: lat.Decimal.InexactFloat64(),
		Lon: lon.Decimal.InexactFloat64(),
	}
}

// columnsFromPoint is the inverse of pointFromColumns.
func columnsFromPoint(p *geo.Point) (lat, lon decimal.NullDecimal) {
	if p == nil {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	lat = decimal.NewNullDecimal(decimal.NewFromFloat(p.Lat).Round(coordinatePlaces))
	lon = decimal.NewNullDecimal(decimal.NewFromFloat(p.Lon).Round(coordinatePlaces))
	return lat, lon
}
