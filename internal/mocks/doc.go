// Package mocks provides centralized mock implementations for testing.
//
// Each mock is a struct with function fields for each interface method, plus
// a simple in-memory default behaviour used when the function field is nil.
//
// Usage:
//
//	inventory := &mocks.MockInventoryStore{
//	    FindAvailableFn: func(ctx context.Context, q store.InventoryQuery) ([]*domain.InventoryUnit, error) {
//	        return nil, store.ErrUnavailable
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Add a compile-time interface assertion
package mocks
