package xrsim

import (
	"errors"
	"slices"
	"time"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/xr"
)

// FrameInterval is the simulated display refresh period.
const FrameInterval = time.Second / 60

var (
	// ErrSessionRejected is the rejection reason for session requests the
	// device refuses.
	ErrSessionRejected = errors.New("xrsim: session request rejected")

	// ErrSourceRejected is the rejection reason for refused hit-test
	// sources.
	ErrSourceRejected = errors.New("xrsim: hit-test source rejected")

	// ErrSpaceUnavailable is the rejection reason for reference spaces the
	// device does not offer.
	ErrSpaceUnavailable = errors.New("xrsim: reference space unavailable")

	// ErrQueryFailed is returned by hit-test queries on steps scripted to
	// fail.
	ErrQueryFailed = errors.New("xrsim: hit-test query failed")

	// ErrSourceCancelled is returned when a cancelled source is queried.
	ErrSourceCancelled = errors.New("xrsim: hit-test source cancelled")
)

type timer struct {
	due int
	fn  func()
}

type pendingFrame struct {
	handle xr.FrameHandle
	cb     xr.FrameCallback
}

// Device is a simulated AR device and display scheduler. It is not safe
// for concurrent use; Step drives everything on the caller's goroutine.
type Device struct {
	cfg    Config
	frames []FrameSpec
	viewer PoseSpec

	step       int
	nextHandle xr.FrameHandle
	pending    []pendingFrame
	timers     []timer

	sessions []*Session
	requests int
}

// NewDevice creates a device that serves frames from s. A nil script is a
// supported device with no hits.
func NewDevice(s *Script) *Device {
	if s == nil {
		s = &Script{}
	}
	return &Device{
		cfg:    s.Device,
		frames: s.Frames,
		viewer: s.ViewerPose(),
	}
}

// IsSessionSupported implements xr.Device.
func (d *Device) IsSessionSupported(mode xr.SessionMode) bool {
	return !d.cfg.Unsupported && mode == xr.ModeImmersiveAR
}

// RequestSession implements xr.Device.
func (d *Device) RequestSession(mode xr.SessionMode, init xr.SessionInit) *xr.Future[xr.Session] {
	d.requests++
	f := xr.NewFuture[xr.Session]()
	if d.cfg.HoldSession {
		return f
	}
	d.after(d.cfg.SessionDelay, func() {
		if d.cfg.RejectSession || !d.IsSessionSupported(mode) {
			f.Reject(ErrSessionRejected)
			return
		}
		s := &Session{device: d, init: init, live: true}
		d.sessions = append(d.sessions, s)
		arplace.Logger().Debug("xrsim: session granted", "step", d.step)
		f.Resolve(s)
	})
	return f
}

// RequestAnimationFrame implements xr.Scheduler.
func (d *Device) RequestAnimationFrame(cb xr.FrameCallback) xr.FrameHandle {
	d.nextHandle++
	d.pending = append(d.pending, pendingFrame{handle: d.nextHandle, cb: cb})
	return d.nextHandle
}

// CancelAnimationFrame implements xr.Scheduler.
func (d *Device) CancelAnimationFrame(h xr.FrameHandle) {
	d.pending = slices.DeleteFunc(d.pending, func(p pendingFrame) bool {
		return p.handle == h
	})
}

func (d *Device) after(steps int, fn func()) {
	if steps <= 0 {
		fn()
		return
	}
	d.timers = append(d.timers, timer{due: d.step + steps, fn: fn})
}

// Step runs one display refresh. It reports whether a frame callback ran.
func (d *Device) Step() bool {
	d.step++

	var due []timer
	d.timers = slices.DeleteFunc(d.timers, func(t timer) bool {
		if t.due <= d.step {
			due = append(due, t)
			return true
		}
		return false
	})
	for _, t := range due {
		t.fn()
	}

	if d.cfg.AbortAtStep == d.step {
		if s := d.Session(); s != nil && s.live {
			s.terminate()
		}
	}

	batch := d.pending
	d.pending = nil
	if len(batch) == 0 {
		return false
	}

	var frame xr.Frame
	if s := d.Session(); s != nil && s.live {
		frame = &Frame{session: s, spec: d.spec(d.step), viewer: d.viewer}
	}
	t := time.Duration(d.step) * FrameInterval
	for _, p := range batch {
		p.cb(t, frame)
	}
	return true
}

// Run steps n times and returns the number of steps that ran a callback.
func (d *Device) Run(n int) int {
	ran := 0
	for range n {
		if d.Step() {
			ran++
		}
	}
	return ran
}

func (d *Device) spec(step int) FrameSpec {
	if step < 1 || step > len(d.frames) {
		return FrameSpec{}
	}
	return d.frames[step-1]
}

// Steps returns the number of steps run so far.
func (d *Device) Steps() int { return d.step }

// Requests returns the number of session requests received.
func (d *Device) Requests() int { return d.requests }

// Scheduled reports whether a frame callback is pending.
func (d *Device) Scheduled() bool { return len(d.pending) > 0 }

// Session returns the most recently granted session, or nil.
func (d *Device) Session() *Session {
	if len(d.sessions) == 0 {
		return nil
	}
	return d.sessions[len(d.sessions)-1]
}

// Sessions returns every session granted so far.
func (d *Device) Sessions() []*Session { return d.sessions }

// Session is a simulated xr.Session.
type Session struct {
	device *Device
	init   xr.SessionInit
	live   bool

	endCalls int
	onEnd    []func()
	sources  []*Source
}

// RequestReferenceSpace implements xr.Session.
func (s *Session) RequestReferenceSpace(kind xr.SpaceKind) *xr.Future[xr.ReferenceSpace] {
	f := xr.NewFuture[xr.ReferenceSpace]()
	delay := s.device.cfg.ViewerDelay
	if kind == xr.SpaceLocal {
		delay = s.device.cfg.LocalDelay
	}
	s.device.after(delay, func() {
		if kind == xr.SpaceLocal && (s.device.cfg.NoLocalSpace || !s.granted(xr.FeatureLocal)) {
			f.Reject(ErrSpaceUnavailable)
			return
		}
		f.Resolve(Space(kind))
	})
	return f
}

// RequestHitTestSource implements xr.Session.
func (s *Session) RequestHitTestSource(opts xr.HitTestOptions) *xr.Future[xr.HitTestSource] {
	f := xr.NewFuture[xr.HitTestSource]()
	s.device.after(s.device.cfg.SourceDelay, func() {
		if s.device.cfg.RejectSource || opts.Space == nil || !s.live {
			f.Reject(ErrSourceRejected)
			return
		}
		src := &Source{session: s}
		s.sources = append(s.sources, src)
		f.Resolve(src)
	})
	return f
}

func (s *Session) granted(feature xr.Feature) bool {
	return slices.Contains(s.init.RequiredFeatures, feature) ||
		slices.Contains(s.init.OptionalFeatures, feature)
}

// End implements xr.Session.
func (s *Session) End() error {
	s.endCalls++
	s.live = false
	return nil
}

// OnEnd implements xr.Session.
func (s *Session) OnEnd(fn func()) {
	s.onEnd = append(s.onEnd, fn)
}

func (s *Session) terminate() {
	s.live = false
	hooks := s.onEnd
	s.onEnd = nil
	for _, fn := range hooks {
		fn()
	}
}

// Live reports whether the session still produces frames.
func (s *Session) Live() bool { return s.live }

// EndCalls returns how many times End was called.
func (s *Session) EndCalls() int { return s.endCalls }

// Sources returns the hit-test sources created for the session.
func (s *Session) Sources() []*Source { return s.sources }

// Source is a simulated hit-test source.
type Source struct {
	session   *Session
	cancelled int
}

// Cancel implements xr.HitTestSource.
func (s *Source) Cancel() { s.cancelled++ }

// Cancelled reports whether Cancel was called.
func (s *Source) Cancelled() bool { return s.cancelled > 0 }

// Space is a simulated reference space.
type Space xr.SpaceKind

// Kind implements xr.ReferenceSpace.
func (s Space) Kind() xr.SpaceKind { return xr.SpaceKind(s) }

// Frame is the simulated frame delivered on one step.
type Frame struct {
	session *Session
	spec    FrameSpec
	viewer  PoseSpec
}

// HitTestResults implements xr.Frame.
func (f *Frame) HitTestResults(source xr.HitTestSource) ([]xr.HitTestResult, error) {
	src, ok := source.(*Source)
	if !ok || src.session != f.session {
		return nil, ErrSourceRejected
	}
	if src.Cancelled() {
		return nil, ErrSourceCancelled
	}
	if f.spec.Error {
		return nil, ErrQueryFailed
	}
	out := make([]xr.HitTestResult, len(f.spec.Hits))
	for i, h := range f.spec.Hits {
		out[i] = hit(h)
	}
	return out, nil
}

// ViewerPose implements xr.Frame.
func (f *Frame) ViewerPose(base xr.ReferenceSpace) (xr.Pose, bool) {
	if base == nil {
		return xr.Pose{}, false
	}
	return f.viewer.Pose(base.Kind()), true
}

type hit PoseSpec

func (h hit) Pose(base xr.ReferenceSpace) (xr.Pose, bool) {
	if base == nil || h.Untracked {
		return xr.Pose{}, false
	}
	return PoseSpec(h).Pose(base.Kind()), true
}
