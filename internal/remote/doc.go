// Package remote provides the workout payload types and an HTTP client for
// the hosted workout service.
//
// Only two endpoints are consumed:
//
//	POST /api/workouts   persist a completed workout, returns {"id": "..."}
//	GET  /api/health     reachability probe
//
// Errors fall into two groups. Transport failures (no HTTP response at all)
// wrap ErrUnreachable so the caller can queue the write for later. Any
// 4xx/5xx answer is a *StatusError; the offline queue treats those as "not
// yet confirmed" as well, but a foreground save surfaces them to the user.
package remote
