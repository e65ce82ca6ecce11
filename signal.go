package arplace

// Signal is a UI-facing notification emitted by the placement core.
// The overlay collaborator uses signals to choose instructional text; the
// core has no knowledge of how they are displayed.
type Signal uint8

const (
	// SignalSessionStarted fires when the session becomes Active.
	SignalSessionStarted Signal = iota

	// SignalSessionEnded fires once when the session reaches Ended, either
	// by explicit end, device termination or rejected negotiation.
	SignalSessionEnded

	// SignalSurfaceFound fires on the frame the reticle becomes visible.
	SignalSurfaceFound

	// SignalSurfaceLost fires on the frame the reticle becomes hidden.
	SignalSurfaceLost

	// SignalAssetLoaded fires once when the asset becomes usable.
	SignalAssetLoaded

	// SignalAssetFailed fires once when the asset loader reports an error.
	SignalAssetFailed

	// SignalAssetPlaced fires on every confirm that moves the asset.
	SignalAssetPlaced
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalSessionStarted:
		return "sessionStarted"
	case SignalSessionEnded:
		return "sessionEnded"
	case SignalSurfaceFound:
		return "surfaceFound"
	case SignalSurfaceLost:
		return "surfaceLost"
	case SignalAssetLoaded:
		return "assetLoaded"
	case SignalAssetFailed:
		return "assetFailed"
	case SignalAssetPlaced:
		return "assetPlaced"
	default:
		return "unknown"
	}
}

// SignalFunc receives signals. err is non-nil only for SignalAssetFailed and
// for SignalSessionEnded after a rejected negotiation.
type SignalFunc func(sig Signal, err error)

// Emit calls f if it is non-nil.
func (f SignalFunc) Emit(sig Signal, err error) {
	if f != nil {
		f(sig, err)
	}
}
