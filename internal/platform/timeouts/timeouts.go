// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request caps the time a single API request may spend in the service.
const Request = 15 * time.Second

// EmailSend caps one outbound email transport call.
const EmailSend = 10 * time.Second

// StoreWrite caps a store write that must land even after the request that
// triggered it is gone.
const StoreWrite = 5 * time.Second

// QueuedStale is how long an email may stay QUEUED before its delivery
// outcome is treated as unknown.
const QueuedStale = EmailSend + StoreWrite

// SafetyFetch caps the lookup of the current email safety snapshot.
const SafetyFetch = 2 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
