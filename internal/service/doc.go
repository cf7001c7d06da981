// Package service contains the application use cases of the matching engine.
// Subpackages hold one component each:
//
//   - supply: nearest-inventory search and priority ranking
//   - donor: donor pool selection, eligibility and availability ranking
//   - forecast: heuristic and trainable demand forecasting
//   - matching: the facade that sequences the above behind uniform results
//
// Services receive their store dependencies through constructor injection and
// never depend on a concrete infrastructure implementation.
package service
