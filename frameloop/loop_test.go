package frameloop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/placement"
	"github.com/gogpu/arplace/render"
	"github.com/gogpu/arplace/session"
	"github.com/gogpu/arplace/xr"
	"github.com/gogpu/arplace/xrsim"
)

type signalLog struct {
	sigs []arplace.Signal
	errs []error
}

func (l *signalLog) emit(sig arplace.Signal, err error) {
	l.sigs = append(l.sigs, sig)
	l.errs = append(l.errs, err)
}

func (l *signalLog) count(sig arplace.Signal) int {
	n := 0
	for _, s := range l.sigs {
		if s == sig {
			n++
		}
	}
	return n
}

type countingRenderer struct {
	calls    int
	reticle  []bool
	asset    []bool
	err      error
	onRender func()
}

func (r *countingRenderer) Render(_ render.RenderTarget, scene *render.Scene, _ *render.Camera) error {
	r.calls++
	r.reticle = append(r.reticle, scene.Reticle.Visible)
	r.asset = append(r.asset, scene.Asset.Visible)
	if r.onRender != nil {
		r.onRender()
	}
	return r.err
}

func (r *countingRenderer) Flush() error { return nil }

type rig struct {
	device   *xrsim.Device
	manager  *session.Manager
	loop     *Loop
	renderer *countingRenderer
	signals  *signalLog
	frames   []FrameInfo
}

func (r *rig) Confirm() { r.loop.Confirm() }
func (r *rig) End()     { r.manager.End() }

func newRig(t *testing.T, yaml string) *rig {
	t.Helper()
	script, err := xrsim.ParseScript([]byte(yaml))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	r := &rig{
		device:   xrsim.NewDevice(script),
		renderer: &countingRenderer{},
		signals:  &signalLog{},
	}
	r.manager = session.NewManager(r.device, session.WithSignals(r.signals.emit))
	if err := r.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	load := r.device.AssetLoader(script.Asset).Load(context.Background(), "models/ice.glb")
	r.loop = New(r.device, r.manager,
		WithRenderer(r.renderer, render.NewPixmapTarget(32, 32)),
		WithAsset(placement.NewAsset(placement.DefaultScale), load),
		WithSignals(r.signals.emit),
		WithAfterFrame(func(fi FrameInfo) { r.frames = append(r.frames, fi) }),
	)
	if err := r.loop.Start(); err != nil {
		t.Fatalf("loop.Start: %v", err)
	}
	return r
}

func (r *rig) play() { r.device.Play(r, nil) }

func hitsAt(z float64, xs ...float64) string {
	var b strings.Builder
	for _, x := range xs {
		fmt.Fprintf(&b, "  - hits: [{position: [%g, 0, %g]}]\n", x, z)
	}
	return b.String()
}

func TestLoopScriptedPlacement(t *testing.T) {
	// P1..P5 on frames 1-5, nothing on 6-8, P9 on frame 9, and the confirm
	// arriving with frame 10 while P9 is still the current result.
	script := "frames:\n" +
		hitsAt(-1, 0.1, 0.2, 0.3, 0.4, 0.5) +
		"  - hits: []\n    repeat: 3\n" +
		hitsAt(-1, 0.9) +
		"  - hits: [{position: [0.9, 0, -1]}]\n    confirm: true\n"
	r := newRig(t, script)
	r.play()

	c := r.loop.Controller()
	if c.State() != placement.Placed {
		t.Fatalf("state = %v, want placed", c.State())
	}
	want := xrsim.PoseSpec{Position: [3]float64{0.9, 0, -1}}.Pose(xr.SpaceLocal)
	if got := c.Asset().Transform(); !got.Equal(want) {
		t.Errorf("asset transform = %+v, want %+v", got, want)
	}
	if !c.Asset().Visible() {
		t.Error("asset not visible after placement")
	}
	if r.signals.count(arplace.SignalAssetPlaced) != 1 {
		t.Errorf("assetPlaced emitted %d times, want 1", r.signals.count(arplace.SignalAssetPlaced))
	}
	// found on 1, lost on 6, found again on 9
	if r.signals.count(arplace.SignalSurfaceFound) != 2 || r.signals.count(arplace.SignalSurfaceLost) != 1 {
		t.Errorf("signals = %v", r.signals.sigs)
	}
	if r.renderer.calls != 10 {
		t.Errorf("render calls = %d, want one per frame (10)", r.renderer.calls)
	}
	if !r.renderer.asset[9] || r.renderer.asset[8] {
		t.Errorf("asset visibility per frame = %v, want visible only on frame 10", r.renderer.asset)
	}
}

func TestLoopHiddenBeforeFirstHit(t *testing.T) {
	r := newRig(t, "frames:\n  - hits: []\n    repeat: 4\n"+hitsAt(-2, 0))
	r.play()

	for i, fi := range r.frames[:4] {
		if fi.Reticle || fi.Asset {
			t.Errorf("frame %d: reticle=%v asset=%v, want both hidden", i+1, fi.Reticle, fi.Asset)
		}
		if fi.Placement != placement.Searching {
			t.Errorf("frame %d: state %v, want searching", i+1, fi.Placement)
		}
	}
	last := r.frames[4]
	if !last.Reticle || last.Placement != placement.Ready {
		t.Errorf("frame 5 = %+v, want visible reticle and ready", last)
	}
	if r.renderer.calls != 5 {
		t.Errorf("render calls = %d, want 5; empty frames still render", r.renderer.calls)
	}
}

func TestLoopConfirmWithoutReticle(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0)+"  - hits: []\n    confirm: true\n")
	r.play()

	c := r.loop.Controller()
	if c.State() != placement.Searching || c.Asset().Visible() {
		t.Errorf("state = %v, visible = %v, want untouched", c.State(), c.Asset().Visible())
	}
	if c.Asset().Transform() != placement.NewAsset(0).Transform() {
		t.Errorf("transform changed to %+v", c.Asset().Transform())
	}
	if r.signals.count(arplace.SignalAssetPlaced) != 0 {
		t.Error("assetPlaced emitted for a no-op confirm")
	}
}

func TestLoopConfirmWhileAssetPending(t *testing.T) {
	r := newRig(t, "asset:\n  delay: 50\nframes:\n"+hitsAt(-1, 0, 0))
	r.device.Step()
	r.loop.Confirm()
	r.device.Step()

	c := r.loop.Controller()
	if !r.loop.Reticle().Visible {
		t.Fatal("reticle should be visible")
	}
	if c.State() != placement.Ready || c.Asset().Visible() || c.Asset().Loaded() {
		t.Errorf("state = %v, asset visible = %v, want ready and hidden", c.State(), c.Asset().Visible())
	}
}

func TestLoopAssetFailure(t *testing.T) {
	r := newRig(t, "asset:\n  fail: true\nframes:\n"+hitsAt(-1, 0, 0)+"  - hits: [{position: [0, 0, -1]}]\n    confirm: true\n")
	r.play()

	if n := r.signals.count(arplace.SignalAssetFailed); n != 1 {
		t.Fatalf("assetFailed emitted %d times, want 1", n)
	}
	for i, s := range r.signals.sigs {
		if s == arplace.SignalAssetFailed && !errors.Is(r.signals.errs[i], arplace.ErrAssetLoad) {
			t.Errorf("assetFailed error = %v, want ErrAssetLoad", r.signals.errs[i])
		}
	}
	c := r.loop.Controller()
	if !c.Asset().Failed() || c.State() != placement.Ready {
		t.Errorf("failed = %v, state = %v; tracking should continue unaffected", c.Asset().Failed(), c.State())
	}
	if c.Asset().Visible() {
		t.Error("failed asset became visible")
	}
}

func TestLoopAssetLoadedSignal(t *testing.T) {
	r := newRig(t, "asset:\n  delay: 2\nframes:\n  - hits: []\n    repeat: 3\n")
	r.play()
	if n := r.signals.count(arplace.SignalAssetLoaded); n != 1 {
		t.Errorf("assetLoaded emitted %d times, want 1", n)
	}
	m := r.loop.Controller().Asset().Model()
	if m == nil || r.loop.Scene().Asset.Max != m.Max {
		t.Error("scene asset bounds not taken from the loaded model")
	}
}

func TestLoopEnd(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0, 0, 0))
	r.device.Step()
	src := r.device.Session().Sources()[0]

	r.manager.End()
	r.manager.End()

	if r.manager.State() != session.Ended {
		t.Fatalf("state = %v, want ended", r.manager.State())
	}
	if n := r.signals.count(arplace.SignalSessionEnded); n != 1 {
		t.Errorf("sessionEnded emitted %d times, want 1", n)
	}
	if !src.Cancelled() {
		t.Error("hit-test source not released")
	}
	if r.device.Scheduled() {
		t.Error("frame still scheduled after End")
	}
	if r.loop.Running() {
		t.Error("loop still running after End")
	}

	before := r.renderer.calls
	r.device.Run(5)
	if r.renderer.calls != before || r.loop.Frames() != 1 {
		t.Errorf("frames ran after End: renders %d -> %d", before, r.renderer.calls)
	}
}

func TestLoopEndFromConfirmPath(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0)+"  - hits: [{position: [0, 0, -1]}]\n    confirm: true\n"+hitsAt(-1, 0))
	sigs := r.signals
	r.loop.opts.signals = func(sig arplace.Signal, err error) {
		sigs.emit(sig, err)
		if sig == arplace.SignalAssetPlaced {
			r.manager.End()
		}
	}
	r.play()

	if r.manager.State() != session.Ended {
		t.Fatalf("state = %v, want ended", r.manager.State())
	}
	if r.renderer.calls != 1 {
		t.Errorf("render calls = %d, want 1: the ending frame must not draw", r.renderer.calls)
	}
	if r.loop.Frames() != 2 {
		t.Errorf("frames = %d, want 2", r.loop.Frames())
	}
	if sigs.count(arplace.SignalSessionEnded) != 1 {
		t.Errorf("sessionEnded emitted %d times", sigs.count(arplace.SignalSessionEnded))
	}
}

func TestLoopEndFromRenderer(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0, 0, 0))
	r.renderer.onRender = r.manager.End
	r.play()
	if r.renderer.calls != 1 || r.device.Scheduled() {
		t.Errorf("render calls = %d, scheduled = %v; no frame should follow End", r.renderer.calls, r.device.Scheduled())
	}
}

func TestLoopNegotiationWindow(t *testing.T) {
	r := newRig(t, "device:\n  session_delay: 2\n  source_delay: 2\nframes:\n"+hitsAt(-1, 0, 0, 0, 0, 0, 0))
	r.play()

	// Session granted at step 2, source at step 4.
	for i, fi := range r.frames[:3] {
		if fi.Reticle {
			t.Errorf("frame %d: reticle visible before the source existed", i+1)
		}
	}
	if !r.frames[len(r.frames)-1].Reticle {
		t.Error("tracking never started")
	}
	if r.renderer.calls != 6 {
		t.Errorf("render calls = %d, want 6", r.renderer.calls)
	}
}

func TestLoopStuckNegotiating(t *testing.T) {
	r := newRig(t, "device:\n  hold_session: true\nframes:\n"+hitsAt(-1, 0, 0, 0))
	r.play()
	if r.manager.State() != session.Negotiating {
		t.Errorf("state = %v, want negotiating", r.manager.State())
	}
	if r.renderer.calls != 3 || !r.loop.Running() {
		t.Errorf("render calls = %d, running = %v; scene should keep rendering", r.renderer.calls, r.loop.Running())
	}
}

func TestLoopRejectedSession(t *testing.T) {
	r := newRig(t, "device:\n  reject_session: true\nframes:\n"+hitsAt(-1, 0, 0))
	r.play()
	if r.manager.State() != session.Ended || r.loop.Running() {
		t.Errorf("state = %v, running = %v", r.manager.State(), r.loop.Running())
	}
	if r.renderer.calls != 0 {
		t.Errorf("render calls = %d, want 0", r.renderer.calls)
	}
}

func TestLoopDeviceAbort(t *testing.T) {
	r := newRig(t, "device:\n  abort_at_step: 2\nframes:\n"+hitsAt(-1, 0, 0, 0))
	r.play()
	if r.manager.State() != session.Ended {
		t.Fatalf("state = %v, want ended", r.manager.State())
	}
	if r.loop.Frames() != 1 {
		t.Errorf("frames = %d, want 1", r.loop.Frames())
	}
	if r.device.Session().EndCalls() != 0 {
		t.Error("device-terminated session should not be ended again")
	}
}

func TestLoopRenderErrorNotFatal(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0, 0, 0))
	r.renderer.err = errors.New("device lost")
	r.play()
	if r.renderer.calls != 3 || !r.loop.Running() {
		t.Errorf("render calls = %d, running = %v", r.renderer.calls, r.loop.Running())
	}
	for _, fi := range r.frames {
		if fi.Rendered {
			t.Error("FrameInfo.Rendered = true for a failed render")
		}
	}
}

func TestLoopConcurrentConfirm(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0, 0))
	r.device.Step()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(r.loop.Confirm)
	}
	wg.Wait()
	r.device.Step()

	if got := r.loop.Controller().Placements(); got != 8 {
		t.Errorf("placements = %d, want 8", got)
	}
}

func TestLoopRequestEnd(t *testing.T) {
	r := newRig(t, "frames:\n"+hitsAt(-1, 0, 0, 0))
	r.device.Step()
	renders := r.renderer.calls

	var wg sync.WaitGroup
	wg.Go(r.loop.RequestEnd)
	wg.Wait()
	if r.manager.State() != session.Active {
		t.Fatalf("state = %v before the next frame, want Active", r.manager.State())
	}

	r.device.Step()
	if r.manager.State() != session.Ended {
		t.Fatalf("state = %v, want Ended", r.manager.State())
	}
	if r.renderer.calls != renders || r.loop.Frames() != 1 {
		t.Errorf("frame ran after end: renders %d -> %d, frames %d", renders, r.renderer.calls, r.loop.Frames())
	}
	if r.loop.Running() {
		t.Error("loop still running after end")
	}
	if n := r.signals.count(arplace.SignalSessionEnded); n != 1 {
		t.Errorf("sessionEnded = %d, want 1", n)
	}
}

func TestLoopCameraFollowsViewer(t *testing.T) {
	r := newRig(t, "viewer:\n  position: [0, 1.6, 0.5]\nframes:\n  - hits: []\n")
	r.play()
	if got := r.loop.Camera().Pose.Position; got != xr.V3(0, 1.6, 0.5) {
		t.Errorf("camera = %+v", got)
	}
}

func TestLoopStart(t *testing.T) {
	r := newRig(t, "frames: []\n")
	if err := r.loop.Start(); err == nil {
		t.Error("second Start succeeded")
	}

	m := session.NewManager(xrsim.NewDevice(nil))
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m.End()
	l := New(xrsim.NewDevice(nil), m)
	if err := l.Start(); !errors.Is(err, arplace.ErrSessionEnded) {
		t.Errorf("Start after End = %v, want ErrSessionEnded", err)
	}
}

type manualScheduler struct {
	cb      xr.FrameCallback
	handles xr.FrameHandle
}

func (s *manualScheduler) RequestAnimationFrame(cb xr.FrameCallback) xr.FrameHandle {
	s.cb = cb
	s.handles++
	return s.handles
}

func (s *manualScheduler) CancelAnimationFrame(xr.FrameHandle) {}

func TestLoopStaleCallbackIsNoop(t *testing.T) {
	dev := xrsim.NewDevice(nil)
	m := session.NewManager(dev)
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	sched := &manualScheduler{}
	rr := &countingRenderer{}
	l := New(sched, m, WithRenderer(rr, render.NewPixmapTarget(8, 8)))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	stale := sched.cb
	m.End()

	// A host that ignores the cancellation still delivers the callback.
	stale(time.Millisecond, nil)
	if l.Frames() != 0 || rr.calls != 0 {
		t.Errorf("stale callback ran: frames=%d renders=%d", l.Frames(), rr.calls)
	}
}

func TestLoopDefaultsWithoutRenderer(t *testing.T) {
	dev := xrsim.NewDevice(nil)
	m := session.NewManager(dev)
	_ = m.Start(context.Background())
	l := New(dev, m, WithAsset(nil, xr.Resolved(asset.UnitModel("cube"))))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	dev.Run(3)
	if l.Frames() != 3 {
		t.Errorf("frames = %d, want 3", l.Frames())
	}
	if !l.Controller().Asset().Loaded() || l.Controller().Asset().Scale() != placement.DefaultScale {
		t.Error("default asset should load from the resolved future")
	}
}

func BenchmarkLoopTick(b *testing.B) {
	m := session.NewManager(xrsim.NewDevice(nil))
	_ = m.Start(context.Background())
	l := New(&manualScheduler{}, m, WithAsset(nil, xr.Resolved(asset.UnitModel("cube"))))
	_ = l.Start()
	b.ReportAllocs()
	for b.Loop() {
		l.tick(0, nil)
	}
}
