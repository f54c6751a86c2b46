// Package state tracks whether the remote workout service is reachable.
//
// The background prober records each health check with Update and the UI
// reads copies through Snapshot. A single failed probe is not enough to go
// offline; two in a row are. Update returns true only when that verdict
// flips, which is the signal the sync coordinator watches for.
//
//	Producer (prober):              Consumer (UI):
//	  Ping() -> store.Update(err)     store.Snapshot() -> render header
//
// The zero Store is ready to use.
package state
