// Package api exposes the matching facade and the background retraining
// pipeline over HTTP. Handlers decode and validate request bodies, delegate
// to the facade and write its uniform response envelope with a status code
// derived from the failure kind.
package api
