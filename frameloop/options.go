package frameloop

import (
	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/placement"
	"github.com/gogpu/arplace/render"
	"github.com/gogpu/arplace/xr"
)

// Option configures a Loop.
type Option func(*options)

// FrameInfo describes one completed invocation. It is passed to the
// after-frame hook.
type FrameInfo struct {
	Index     uint64
	Placement placement.State
	Reticle   bool
	Asset     bool
	Rendered  bool
}

type options struct {
	renderer   render.Renderer
	target     render.RenderTarget
	asset      *placement.Asset
	assetReq   *xr.Future[*asset.Model]
	signals    arplace.SignalFunc
	afterFrame func(FrameInfo)
}

// WithRenderer sets the renderer and the target it draws to each frame.
// Without a renderer the loop still runs but issues no draw calls.
func WithRenderer(r render.Renderer, target render.RenderTarget) Option {
	return func(o *options) {
		o.renderer = r
		o.target = target
	}
}

// WithAsset sets the placeable asset and the pending load outcome that the
// loop polls each frame. load may be nil when the asset is marked loaded by
// other means.
func WithAsset(a *placement.Asset, load *xr.Future[*asset.Model]) Option {
	return func(o *options) {
		o.asset = a
		o.assetReq = load
	}
}

// WithSignals sets the receiver for surface, asset and placement signals.
func WithSignals(fn arplace.SignalFunc) Option {
	return func(o *options) {
		o.signals = fn
	}
}

// WithAfterFrame registers a hook run at the end of each invocation,
// including invocations that ended the session.
func WithAfterFrame(fn func(FrameInfo)) Option {
	return func(o *options) {
		o.afterFrame = fn
	}
}
