package placement

import (
	"github.com/gogpu/arplace/tracking"
)

// State is the placement state.
type State uint8

const (
	// Searching: no surface under the reticle.
	Searching State = iota

	// Ready: a surface is tracked and the asset can be placed.
	Ready

	// Placed: the asset has been committed at least once.
	Placed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Searching:
		return "Searching"
	case Ready:
		return "Ready"
	case Placed:
		return "Placed"
	default:
		return "Unknown"
	}
}

// Controller drives the asset from reticle state and confirm events.
//
// Controller is NOT safe for concurrent use. Observe must run before Confirm
// within a frame so confirms see that frame's reticle.
type Controller struct {
	state      State
	asset      *Asset
	placements int
}

// NewController returns a controller in the Searching state.
func NewController(a *Asset) *Controller {
	if a == nil {
		a = NewAsset(DefaultScale)
	}
	return &Controller{asset: a}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Asset returns the controlled asset.
func (c *Controller) Asset() *Asset { return c.asset }

// Placements returns how many confirms committed a transform.
func (c *Controller) Placements() int { return c.placements }

// Observe applies the tracking transitions for this frame's reticle.
func (c *Controller) Observe(r tracking.Reticle) {
	switch c.state {
	case Searching:
		if r.Visible {
			c.state = Ready
		}
	case Ready:
		if !r.Visible {
			c.state = Searching
		}
	}
}

// Confirm handles one confirm event against reticle r. When r is visible
// and the asset is loaded, the reticle pose is copied exactly into the asset
// transform, the asset becomes visible and the state is Placed. Otherwise
// Confirm is a no-op and returns false.
func (c *Controller) Confirm(r tracking.Reticle) bool {
	if !r.Visible || !c.asset.loaded {
		return false
	}
	c.asset.transform = r.Pose
	c.asset.visible = true
	c.state = Placed
	c.placements++
	return true
}
