// Package store defines the persistence contracts consumed by the matching
// engine: inventory, donation requests, donors and forecast model artifacts.
// The engine only reads inventory, requests and donors; writes happen through
// the operations that own those records (fulfilment, request intake, seeding).
package store
