// Package driver broadcasts events to an ordered, fixed set of clients.
//
//   - client.go: Client capability, ClientFunc adapter, Base stub.
//   - driver.go: Driver type, constructors, the dispatch loop.
//   - config.go: Config and failure policies; NewWithConfig applies defaults.
//   - errors.go: error types and helpers (IsNotImplemented, IsPanic).
//   - metrics.go: Prometheus dispatch metrics.
//   - recorder.go, logclient.go: bundled clients.
//
// A Driver is not safe for concurrent use. Callers that share one across
// goroutines (the HTTP layer, for example) must serialize Emit calls.
package driver
