// Package events decouples the components that request background work
// from the components that perform it.
//
// An HTTP handler that wants the demand forecaster retrained emits a
// TaskRequestEvent of type TypeForecastRetrain; the task package registers
// a handler that turns such events into queued tasks.
package events
