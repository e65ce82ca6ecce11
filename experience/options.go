package experience

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/frameloop"
	"github.com/gogpu/arplace/placement"
	"github.com/gogpu/arplace/render"
)

// DefaultAsset is the model loaded when WithAsset is not given.
const DefaultAsset = "models/ice.glb"

// Action is what a bound key does.
type Action uint8

const (
	// ActionConfirm queues a confirm event.
	ActionConfirm Action = iota + 1

	// ActionEnd ends the session.
	ActionEnd
)

// Option configures an Experience.
type Option func(*options)

type options struct {
	source     string
	loader     asset.Loader
	scale      float64
	renderer   render.Renderer
	target     render.RenderTarget
	signals    arplace.SignalFunc
	local      bool
	keys       map[gpucontext.Key]Action
	afterFrame func(frameloop.FrameInfo)
}

func defaultOptions() options {
	return options{
		source: DefaultAsset,
		scale:  placement.DefaultScale,
		local:  true,
		keys:   map[gpucontext.Key]Action{gpucontext.KeySpace: ActionConfirm},
	}
}

// WithAsset sets the model source passed to the loader. An empty source
// skips loading, so the asset never becomes placeable.
func WithAsset(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithLoader sets the asset loader. The default is a glTF loader whose
// cache lives as long as the Experience, so a restarted session reuses the
// decoded model.
func WithLoader(l asset.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithAssetScale sets the uniform scale of the placed asset.
func WithAssetScale(s float64) Option {
	return func(o *options) {
		o.scale = s
	}
}

// WithRenderer sets the renderer and its target.
func WithRenderer(r render.Renderer, target render.RenderTarget) Option {
	return func(o *options) {
		o.renderer = r
		o.target = target
	}
}

// WithSignals sets the receiver for UI signals from every session.
func WithSignals(fn arplace.SignalFunc) Option {
	return func(o *options) {
		o.signals = fn
	}
}

// WithLocalSpace controls whether the local reference space is requested.
func WithLocalSpace(enabled bool) Option {
	return func(o *options) {
		o.local = enabled
	}
}

// WithKey binds key to action. Space is bound to ActionConfirm by default;
// binding an action of zero removes a binding.
func WithKey(key gpucontext.Key, action Action) Option {
	return func(o *options) {
		if action == 0 {
			delete(o.keys, key)
			return
		}
		o.keys[key] = action
	}
}

// WithFrameHook runs fn after every frame of every session.
func WithFrameHook(fn func(frameloop.FrameInfo)) Option {
	return func(o *options) {
		o.afterFrame = fn
	}
}
