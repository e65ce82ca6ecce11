// Package frameloop drives the placement core once per display refresh.
//
// Each invocation runs, in order: negotiation polling, the surface tracker,
// confirm delivery, and the draw call. The loop is driven by the host's
// xr.Scheduler; it never spins on its own.
package frameloop

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/placement"
	"github.com/gogpu/arplace/render"
	"github.com/gogpu/arplace/session"
	"github.com/gogpu/arplace/tracking"
	"github.com/gogpu/arplace/xr"
)

// Loop owns the tracker, the placement controller and the scene for one
// session.
//
// Confirm and RequestEnd are safe to call from any goroutine. All other
// methods, and the frame callbacks, run on the frame-dispatch goroutine.
type Loop struct {
	scheduler  xr.Scheduler
	manager    *session.Manager
	tracker    *tracking.Tracker
	controller *placement.Controller
	scene      *render.Scene
	camera     *render.Camera
	opts       options

	confirms atomic.Int32
	endReq   atomic.Bool

	handle    xr.FrameHandle
	scheduled bool
	started   bool
	stopped   bool
	frames    uint64
}

// New creates a loop for manager, scheduled by scheduler.
func New(scheduler xr.Scheduler, manager *session.Manager, opts ...Option) *Loop {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.asset == nil {
		o.asset = placement.NewAsset(placement.DefaultScale)
	}
	return &Loop{
		scheduler:  scheduler,
		manager:    manager,
		tracker:    tracking.NewTracker(),
		controller: placement.NewController(o.asset),
		scene:      render.NewScene(),
		camera:     render.NewCamera(),
		opts:       o,
	}
}

// Start schedules the first frame. The loop stops for good when the
// session ends.
func (l *Loop) Start() error {
	if l.started {
		return errors.New("frameloop: already started")
	}
	if l.manager.State() == session.Ended {
		return fmt.Errorf("frameloop: %w", arplace.ErrSessionEnded)
	}
	l.started = true
	l.manager.OnEnd(l.stop)
	l.schedule()
	return nil
}

// Confirm queues one confirm event for the next invocation.
func (l *Loop) Confirm() {
	l.confirms.Add(1)
}

// RequestEnd asks the next invocation to end the session before it polls
// or draws anything. Use it to end from a goroutine other than the
// frame-dispatch one; on that goroutine call the manager's End directly.
func (l *Loop) RequestEnd() {
	l.endReq.Store(true)
}

func (l *Loop) schedule() {
	if l.stopped || l.scheduled {
		return
	}
	l.handle = l.scheduler.RequestAnimationFrame(l.tick)
	l.scheduled = true
}

// stop cancels the pending frame. Any callback the host still delivers is a
// no-op.
func (l *Loop) stop() {
	if l.stopped {
		return
	}
	l.stopped = true
	if l.scheduled {
		l.scheduler.CancelAnimationFrame(l.handle)
		l.scheduled = false
	}
	l.confirms.Store(0)
}

func (l *Loop) tick(_ time.Duration, frame xr.Frame) {
	l.scheduled = false
	if l.stopped {
		return
	}
	if l.endReq.Swap(false) {
		arplace.Logger().Debug("end requested", "session", l.manager.ID())
		l.manager.End()
		if l.stopped {
			return
		}
	}
	l.frames++
	info := FrameInfo{Index: l.frames}
	defer func() {
		info.Placement = l.controller.State()
		info.Reticle = l.tracker.Reticle().Visible
		info.Asset = l.controller.Asset().Visible()
		if l.opts.afterFrame != nil {
			l.opts.afterFrame(info)
		}
	}()

	l.manager.Advance()
	if l.stopped {
		return
	}
	l.pollAsset()

	// (1) tracking
	var res tracking.Result
	if source := l.manager.HitTestSource(); source != nil {
		res = l.tracker.Update(frame, source, l.manager.ReferenceSpace())
	} else {
		res = l.tracker.Hide()
	}
	if res.Found {
		l.opts.signals.Emit(arplace.SignalSurfaceFound, nil)
	}
	if res.Lost {
		l.opts.signals.Emit(arplace.SignalSurfaceLost, nil)
	}
	if l.stopped {
		return
	}
	l.controller.Observe(res.Reticle)

	// (2) confirms queued since the previous invocation
	for n := l.confirms.Swap(0); n > 0; n-- {
		l.confirm()
		if l.stopped {
			return
		}
	}

	// (3) draw
	info.Rendered = l.draw(frame)
	l.schedule()
}

func (l *Loop) confirm() {
	r := l.tracker.Reticle()
	if !l.controller.Confirm(r) {
		arplace.Logger().Debug("confirm ignored",
			"reticle", r.Visible, "loaded", l.controller.Asset().Loaded())
		return
	}
	p := r.Pose.Position
	arplace.Logger().Info("asset placed", "session", l.manager.ID(),
		"x", p.X, "y", p.Y, "z", p.Z, "count", l.controller.Placements())
	l.opts.signals.Emit(arplace.SignalAssetPlaced, nil)
}

func (l *Loop) pollAsset() {
	req := l.opts.assetReq
	if req == nil || !req.Ready() {
		return
	}
	l.opts.assetReq = nil
	a := l.controller.Asset()

	m, err := req.Result()
	if err == nil && m == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		if !errors.Is(err, arplace.ErrAssetLoad) {
			err = fmt.Errorf("%w: %w", arplace.ErrAssetLoad, err)
		}
		if a.MarkFailed(err) {
			arplace.Logger().Warn("asset unavailable for this session", "err", err)
			l.opts.signals.Emit(arplace.SignalAssetFailed, err)
		}
		return
	}
	if a.MarkLoaded(m) {
		l.opts.signals.Emit(arplace.SignalAssetLoaded, nil)
	}
}

// draw syncs the scene from the reticle and asset and issues the draw call.
// It runs every invocation, whether or not a surface is tracked.
func (l *Loop) draw(frame xr.Frame) bool {
	r := l.tracker.Reticle()
	l.scene.Reticle.Visible = r.Visible
	if r.Visible {
		l.scene.Reticle.SetPose(r.Pose)
	}

	a := l.controller.Asset()
	l.scene.Asset.Visible = a.Visible()
	l.scene.Asset.SetPose(a.Transform())
	l.scene.Asset.SetUniformScale(a.Scale())
	if m := a.Model(); m != nil {
		l.scene.Asset.Min, l.scene.Asset.Max = m.Min, m.Max
	}

	if space := l.manager.ReferenceSpace(); frame != nil && space != nil {
		if vp, ok := frame.ViewerPose(space); ok {
			l.camera.Pose = vp
		}
	}

	if l.opts.renderer == nil {
		return false
	}
	if err := l.opts.renderer.Render(l.opts.target, l.scene, l.camera); err != nil {
		arplace.Logger().Warn("render failed", "frame", l.frames, "err", err)
		return false
	}
	return true
}

// Frames returns the number of invocations that ran.
func (l *Loop) Frames() uint64 { return l.frames }

// Running reports whether the loop is started and not stopped.
func (l *Loop) Running() bool { return l.started && !l.stopped }

// Reticle returns the current reticle.
func (l *Loop) Reticle() tracking.Reticle { return l.tracker.Reticle() }

// Controller returns the placement controller.
func (l *Loop) Controller() *placement.Controller { return l.controller }

// Scene returns the scene drawn each frame.
func (l *Loop) Scene() *render.Scene { return l.scene }

// Camera returns the camera used for drawing.
func (l *Loop) Camera() *render.Camera { return l.camera }
