// Package task runs background work, such as forecaster retraining, off
// the request path. Tasks are recorded in a TaskStore, buffered in a
// TaskQueue and executed by a WorkerPool.
package task
