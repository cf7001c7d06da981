// Package postgres implements the internal/store interfaces on PostgreSQL
// through the pgx database/sql driver. Facility and donor coordinates are
// NUMERIC columns scanned with shopspring/decimal; schema changes are goose
// migrations embedded in the binary.
package postgres
