// Package logtail reads the tail of spotter's JSON log file and renders the
// entries as single readable lines.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines, so it scans the file once and
// holds only the lines it returns:
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// A missing file is not an error; it yields no lines.
//
// # Formatting
//
// Parse decodes one zap JSON record into an Entry. String renders it as
//
//	2026-10-15T18:30:02.114Z WARN replay failed, keeping mutation mutation_id=... type=persist_workout
//
// Lines that are not JSON, like a Go panic trace, pass through Format
// untouched.
package logtail
