// Package experience composes the placement core into one tap-to-place
// experience.
//
// An Experience owns no frame state itself. Each Start builds a fresh
// session manager and frame loop, which in turn own the tracker, the
// placement controller and the scene; ending the session discards them.
// Only the asset loader, and with it the decoded model cache, outlives a
// session.
//
// Typical use with a host event source:
//
//	exp := experience.New(device, scheduler,
//	    experience.WithRenderer(render.NewSoftwareRenderer(), target),
//	)
//	if err := exp.Start(ctx); errors.Is(err, arplace.ErrCapabilityUnavailable) {
//	    // show "AR not supported"
//	}
//	events.OnKeyPress(exp.HandleKey)
package experience

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/frameloop"
	"github.com/gogpu/arplace/placement"
	"github.com/gogpu/arplace/session"
	"github.com/gogpu/arplace/tracking"
	"github.com/gogpu/arplace/xr"
)

// Experience is the composition root of the placement core.
//
// Start, End and Snapshot run on the frame-dispatch goroutine. Confirm and
// HandleKey may be called from any goroutine: they only queue work that the
// next frame applies.
type Experience struct {
	device    xr.Device
	scheduler xr.Scheduler
	opts      options

	mu      sync.Mutex
	manager *session.Manager
	loop    *frameloop.Loop
	runs    int
}

// New creates an Experience for device, driven by scheduler.
func New(device xr.Device, scheduler xr.Scheduler, opts ...Option) *Experience {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.loader == nil {
		o.loader = asset.NewGLTFLoader()
	}
	return &Experience{
		device:    device,
		scheduler: scheduler,
		opts:      o,
	}
}

// Start begins a new session. It fails with an error wrapping
// arplace.ErrCapabilityUnavailable when the device cannot run AR, in which
// case nothing is scheduled, and with arplace.ErrSessionStarted while a
// previous session is still negotiating or active. Starting after a
// session ended begins again from Searching.
func (e *Experience) Start(ctx context.Context) error {
	e.mu.Lock()
	prev := e.manager
	e.mu.Unlock()
	if prev != nil {
		switch prev.State() {
		case session.Negotiating, session.Active:
			return arplace.ErrSessionStarted
		}
	}

	m := session.NewManager(e.device,
		session.WithSignals(e.opts.signals),
		session.WithLocalSpace(e.opts.local),
	)
	if err := m.Start(ctx); err != nil {
		return err
	}

	var load *xr.Future[*asset.Model]
	if e.opts.source != "" {
		load = e.opts.loader.Load(ctx, e.opts.source)
	}
	loop := frameloop.New(e.scheduler, m,
		frameloop.WithRenderer(e.opts.renderer, e.opts.target),
		frameloop.WithAsset(placement.NewAsset(e.opts.scale), load),
		frameloop.WithSignals(e.opts.signals),
		frameloop.WithAfterFrame(e.opts.afterFrame),
	)
	if err := loop.Start(); err != nil {
		m.End()
		return fmt.Errorf("experience: %w", err)
	}

	e.mu.Lock()
	e.manager, e.loop = m, loop
	e.runs++
	e.mu.Unlock()
	return nil
}

// End ends the current session, if any. It is idempotent and must run on
// the frame-dispatch goroutine; input goroutines end through HandleKey.
func (e *Experience) End() {
	e.mu.Lock()
	m := e.manager
	e.mu.Unlock()
	if m != nil {
		m.End()
	}
}

// Confirm queues a confirm event for the current session's next frame.
// It is dropped when no session was started.
func (e *Experience) Confirm() {
	e.mu.Lock()
	loop := e.loop
	e.mu.Unlock()
	if loop != nil {
		loop.Confirm()
	}
}

// HandleKey queues the action bound to key for the next frame. Its
// signature matches a gpucontext key-press handler. Unbound keys are
// ignored.
func (e *Experience) HandleKey(key gpucontext.Key, _ gpucontext.Modifiers) {
	switch e.opts.keys[key] {
	case ActionConfirm:
		e.Confirm()
	case ActionEnd:
		e.requestEnd()
	}
}

func (e *Experience) requestEnd() {
	e.mu.Lock()
	loop := e.loop
	e.mu.Unlock()
	if loop != nil {
		loop.RequestEnd()
	}
}

// Snapshot is a read-only view of the current session.
type Snapshot struct {
	Session      session.State
	SessionID    string
	Placement    placement.State
	Reticle      tracking.Reticle
	Asset        xr.Pose
	AssetVisible bool
	AssetLoaded  bool
	AssetFailed  bool
	Frames       uint64

	// Runs counts successful Start calls.
	Runs int
}

// Snapshot returns the state of the current session. Before the first
// Start it reports an Inactive session.
func (e *Experience) Snapshot() Snapshot {
	e.mu.Lock()
	m, loop, runs := e.manager, e.loop, e.runs
	e.mu.Unlock()

	s := Snapshot{Runs: runs}
	if m == nil {
		return s
	}
	s.Session = m.State()
	s.SessionID = m.ID()
	c := loop.Controller()
	s.Placement = c.State()
	s.Reticle = loop.Reticle()
	s.Asset = c.Asset().Transform()
	s.AssetVisible = c.Asset().Visible()
	s.AssetLoaded = c.Asset().Loaded()
	s.AssetFailed = c.Asset().Failed()
	s.Frames = loop.Frames()
	return s
}
