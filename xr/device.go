package xr

import "time"

// SessionMode selects the kind of AR session requested from the device.
type SessionMode string

// ModeImmersiveAR is a passthrough AR session covering the display.
const ModeImmersiveAR SessionMode = "immersive-ar"

// Feature names a session capability negotiated at request time.
type Feature string

const (
	// FeatureHitTest enables surface hit-testing.
	FeatureHitTest Feature = "hit-test"

	// FeatureLocal enables the stable "local" reference space.
	FeatureLocal Feature = "local"
)

// SessionInit lists the features a session request needs.
// A device that cannot grant a required feature rejects the request.
type SessionInit struct {
	RequiredFeatures []Feature
	OptionalFeatures []Feature
}

// SpaceKind names a reference space.
type SpaceKind string

const (
	// SpaceViewer is anchored to the device; used to aim hit-test rays.
	SpaceViewer SpaceKind = "viewer"

	// SpaceLocal is a stable world anchor near the session origin.
	SpaceLocal SpaceKind = "local"
)

// ReferenceSpace is a coordinate frame poses are expressed in.
type ReferenceSpace interface {
	Kind() SpaceKind
}

// HitTestOptions configures a hit-test source.
type HitTestOptions struct {
	// Space is the space whose origin and -Z axis define the ray.
	Space ReferenceSpace
}

// HitTestSource is a live hit-test query. Results for it are read from each
// frame. Cancel releases it; calling Cancel twice is harmless.
type HitTestSource interface {
	Cancel()
}

// HitTestResult is one candidate surface intersection.
type HitTestResult interface {
	// Pose returns the intersection pose relative to base, or false if the
	// runtime cannot relate the result to that space this frame.
	Pose(base ReferenceSpace) (Pose, bool)
}

// Frame is one display refresh of an active session.
type Frame interface {
	// HitTestResults returns the results for source, ordered as ranked by
	// the runtime. The order is not guaranteed to be by distance.
	HitTestResults(source HitTestSource) ([]HitTestResult, error)

	// ViewerPose returns the device pose relative to base, if tracked.
	ViewerPose(base ReferenceSpace) (Pose, bool)
}

// Session is a negotiated AR session.
type Session interface {
	RequestReferenceSpace(kind SpaceKind) *Future[ReferenceSpace]
	RequestHitTestSource(opts HitTestOptions) *Future[HitTestSource]

	// End terminates the session. Ending an ended session is a no-op.
	End() error

	// OnEnd registers fn to run when the runtime terminates the session on
	// its own. fn runs on the frame-dispatch goroutine.
	OnEnd(fn func())
}

// Device is the capability provider.
type Device interface {
	// IsSessionSupported reports whether mode can be requested at all.
	IsSessionSupported(mode SessionMode) bool

	// RequestSession starts negotiating a session.
	RequestSession(mode SessionMode, init SessionInit) *Future[Session]
}

// FrameCallback is invoked once per display refresh. frame is nil when no
// AR session is producing frames yet.
type FrameCallback func(t time.Duration, frame Frame)

// FrameHandle identifies a scheduled frame callback.
type FrameHandle uint64

// Scheduler is the host's display-refresh facility. Each request schedules
// exactly one callback.
type Scheduler interface {
	RequestAnimationFrame(cb FrameCallback) FrameHandle
	CancelAnimationFrame(h FrameHandle)
}
