// Package rules holds the pure, deterministic business rules of the blood-supply
// domain: donation eligibility windows and expiry risk classification.
//
// Nothing in this package performs I/O or reads the wall clock; callers pass
// "today" explicitly so results are reproducible in tests.
package rules
