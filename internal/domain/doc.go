// Package domain contains the core entities of the blood-supply network:
// inventory units, donation requests, donors, forecast history and trained
// forecasting models, together with the invariants that govern them.
//
// The matching and forecasting engine only reads these records; persistence
// and mutation belong to the store implementations.
package domain
