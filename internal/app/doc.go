// Package app is spotter's composition root.
//
// Open loads the config and prefs, builds the zap logger, opens the SQLite
// durable store (falling back to memory when it cannot) and constructs the
// engine: session manager, rest timer, mutation queue, sync coordinator and
// the workout coordinator on top. Constructing the session manager and the
// rest timer restores whatever a previous process left behind.
//
// Start launches the long-running parts:
//
//	StartProber ──(online flips)──> syncer.Watch ──> Drain
//	     │
//	     └─> state.Store.Update     (read by the UI header)
//
// plus one drain pass at startup and, when metrics_addr is set, a
// Prometheus /metrics endpoint.
//
// The prober backs off exponentially while the service is down, capped at
// 30 seconds, so a long outage does not turn into a tight retry loop.
//
// Run ties it all to the TUI for `spotter run`. The non-interactive CLI
// commands call Open and Close directly.
package app
