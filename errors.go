package arplace

import "errors"

// Errors reported by the placement core.
var (
	// ErrCapabilityUnavailable is returned by session start when the device
	// cannot hit-test surfaces. No session is created.
	ErrCapabilityUnavailable = errors.New("arplace: surface hit-testing not supported")

	// ErrAssetLoad wraps a loader failure. The session keeps tracking, but
	// the asset stays unloaded for the rest of the run.
	ErrAssetLoad = errors.New("arplace: asset load failed")

	// ErrHitTestQuery marks a per-frame hit-test failure. It is never
	// surfaced to callers; the frame is treated as "no surface".
	ErrHitTestQuery = errors.New("arplace: hit-test query failed")

	// ErrSessionStarted is returned when starting a session manager that
	// already left the Inactive state.
	ErrSessionStarted = errors.New("arplace: session already started")

	// ErrSessionEnded is reported when a negotiation step completes after
	// the session was ended; the result is discarded.
	ErrSessionEnded = errors.New("arplace: session ended")
)
