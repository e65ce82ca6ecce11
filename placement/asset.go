package placement

import (
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/xr"
)

// DefaultScale is the uniform scale applied to the placed model.
const DefaultScale = 0.5

// Asset is the placeable model. Its load state is set once from the loader
// outcome; its transform and visibility change only through Controller.
type Asset struct {
	transform xr.Pose
	visible   bool
	loaded    bool
	failed    bool
	err       error
	scale     float64
	model     *asset.Model
}

// NewAsset returns an unloaded, hidden asset with the given uniform scale.
// A non-positive scale uses DefaultScale.
func NewAsset(scale float64) *Asset {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Asset{
		transform: xr.Pose{Orientation: xr.IdentityQuat()},
		scale:     scale,
	}
}

// MarkLoaded makes the asset usable. It returns false if the asset already
// loaded or failed; a failed asset stays unusable for the run.
func (a *Asset) MarkLoaded(m *asset.Model) bool {
	if a.loaded || a.failed {
		return false
	}
	a.loaded = true
	a.model = m
	return true
}

// MarkFailed records a load failure. It returns false if the outcome was
// already recorded.
func (a *Asset) MarkFailed(err error) bool {
	if a.loaded || a.failed {
		return false
	}
	a.failed = true
	a.err = err
	return true
}

// Transform returns the last committed pose.
func (a *Asset) Transform() xr.Pose { return a.transform }

// Visible reports whether the asset has been placed.
func (a *Asset) Visible() bool { return a.visible }

// Loaded reports whether the model is usable.
func (a *Asset) Loaded() bool { return a.loaded }

// Failed reports whether loading failed.
func (a *Asset) Failed() bool { return a.failed }

// Err returns the load failure, if any.
func (a *Asset) Err() error { return a.err }

// Scale returns the uniform model scale.
func (a *Asset) Scale() float64 { return a.scale }

// Model returns the loaded model, or nil.
func (a *Asset) Model() *asset.Model { return a.model }
