package logging

import "time"

// #region build-entry
// BuildEntry is a single row in the build_log table.
type BuildEntry struct {
	BuildID     string
	Fingerprint string
	Name        string
	Source      string // "built" | "loaded"
	Nodes       int
	Duration    time.Duration
	Description string
	CreatedAt   time.Time
}
// #endregion build-entry

// Sources recorded in build_log.
const (
	SourceBuilt  = "built"
	SourceLoaded = "loaded"
)
