// Package tracking turns each frame's hit-test result into the reticle that
// marks the surface under the view ray.
package tracking

import (
	"fmt"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/xr"
)

// Reticle is the on-screen surface indicator. The pose is meaningful only
// while Visible is true.
type Reticle struct {
	Pose    xr.Pose
	Visible bool
}

// Result is the outcome of one tracker update.
type Result struct {
	Reticle Reticle

	// Found is true on the frame the reticle became visible.
	Found bool

	// Lost is true on the frame the reticle became hidden.
	Lost bool
}

// Tracker owns the reticle. It keeps no other state between frames: every
// update recomputes the reticle from that frame's hit-test results alone.
//
// Tracker is NOT safe for concurrent use.
type Tracker struct {
	reticle Reticle
}

// NewTracker returns a tracker with a hidden reticle.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reticle returns the current reticle state.
func (t *Tracker) Reticle() Reticle {
	return t.reticle
}

// Update runs the per-frame hit test.
//
// The reticle is hidden when frame or source is nil (the source is still
// being negotiated), when the query fails, when it returns no results, or
// when the first result cannot be expressed in space. Otherwise the FIRST
// result, in the order the runtime ranked them, becomes the reticle pose.
// The first result is not necessarily the closest surface.
func (t *Tracker) Update(frame xr.Frame, source xr.HitTestSource, space xr.ReferenceSpace) Result {
	wasVisible := t.reticle.Visible

	pose, ok := firstHit(frame, source, space)
	if ok {
		t.reticle = Reticle{Pose: pose, Visible: true}
	} else {
		t.reticle.Visible = false
	}

	return Result{
		Reticle: t.reticle,
		Found:   !wasVisible && t.reticle.Visible,
		Lost:    wasVisible && !t.reticle.Visible,
	}
}

// Hide clears visibility without a query, e.g. while no source exists.
func (t *Tracker) Hide() Result {
	return t.Update(nil, nil, nil)
}

func firstHit(frame xr.Frame, source xr.HitTestSource, space xr.ReferenceSpace) (xr.Pose, bool) {
	if frame == nil || source == nil || space == nil {
		return xr.Pose{}, false
	}
	results, err := frame.HitTestResults(source)
	if err != nil {
		arplace.Logger().Debug("hit-test miss", "err", fmt.Errorf("%w: %w", arplace.ErrHitTestQuery, err))
		return xr.Pose{}, false
	}
	if len(results) == 0 || results[0] == nil {
		return xr.Pose{}, false
	}
	return results[0].Pose(space)
}
