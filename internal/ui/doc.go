// Package ui is spotter's Bubble Tea workout screen.
//
// # Layout
//
//	┌ header ─ status badge, session clock, connectivity, queued count ┐
//	│ workout panel: blocks, exercises, set marks (✓ done, › next)     │
//	│ rest panel: countdown and progress bar                           │
//	  toast line
//	└ footer ─ short key help, last sync result ───────────────────────┘
//
// # Refresh Model
//
// The engines own their own tickers. The model never counts time itself:
// every tickMsg pulls fresh snapshots from the session, rest timer,
// reachability store and queue, and drains the notification inbox into the
// toast line.
//
// # Platform Signals
//
// The program enables focus reporting. tea.FocusMsg is treated as the host
// becoming visible again and triggers an immediate recompute of both the
// session clock and the rest countdown. Every key press unlocks audio
// first, since the chime may only play after a user gesture.
//
// # Long Operations
//
// Finish and manual sync run as tea.Cmds so a slow remote never blocks
// rendering. Their results arrive as finishedMsg and syncedMsg.
package ui
