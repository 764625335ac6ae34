// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// Dial caps the wait time when dialing the control server.
const Dial = 5 * time.Second

// Command caps the time allowed for a single command round-trip. Slow
// commands (render, create, material) double this budget.
const Command = 30 * time.Second

// Execute caps how long a queued command may run on the engine executor.
const Execute = 30 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long a server waits for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second
