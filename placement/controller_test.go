package placement

import (
	"errors"
	"testing"

	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/tracking"
	"github.com/gogpu/arplace/xr"
)

func visible(x float64) tracking.Reticle {
	return tracking.Reticle{
		Pose:    xr.NewPose(xr.SpaceLocal, xr.V3(x, 0, -1), xr.AxisAngle(xr.V3(0, 1, 0), x)),
		Visible: true,
	}
}

var hidden = tracking.Reticle{}

func loadedController(t *testing.T) *Controller {
	t.Helper()
	a := NewAsset(0)
	if !a.MarkLoaded(&asset.Model{Name: "ice"}) {
		t.Fatal("MarkLoaded returned false")
	}
	return NewController(a)
}

func TestInitialState(t *testing.T) {
	c := NewController(nil)
	if c.State() != Searching {
		t.Errorf("state = %v, want Searching", c.State())
	}
	a := c.Asset()
	if a.Visible() || a.Loaded() {
		t.Error("new asset visible or loaded")
	}
	if a.Scale() != DefaultScale {
		t.Errorf("scale = %v, want %v", a.Scale(), DefaultScale)
	}
}

func TestObserveTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		r    tracking.Reticle
		want State
	}{
		{"searching finds surface", Searching, visible(1), Ready},
		{"searching stays", Searching, hidden, Searching},
		{"ready loses surface", Ready, hidden, Searching},
		{"ready stays", Ready, visible(1), Ready},
		{"placed keeps on loss", Placed, hidden, Placed},
		{"placed keeps on track", Placed, visible(1), Placed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(nil)
			c.state = tt.from
			c.Observe(tt.r)
			if c.State() != tt.want {
				t.Errorf("state = %v, want %v", c.State(), tt.want)
			}
		})
	}
}

func TestConfirmPlacesExactPose(t *testing.T) {
	c := loadedController(t)
	r := visible(0.7)
	c.Observe(r)

	if !c.Confirm(r) {
		t.Fatal("Confirm returned false")
	}
	if c.State() != Placed {
		t.Errorf("state = %v, want Placed", c.State())
	}
	if !c.Asset().Visible() {
		t.Error("asset not visible after placement")
	}
	if c.Asset().Transform() != r.Pose {
		t.Errorf("transform = %+v, want exactly %+v", c.Asset().Transform(), r.Pose)
	}
}

func TestConfirmRepositions(t *testing.T) {
	c := loadedController(t)
	c.Observe(visible(1))
	c.Confirm(visible(1))

	second := visible(2)
	c.Observe(second)
	if !c.Confirm(second) {
		t.Fatal("second Confirm returned false")
	}
	if c.Asset().Transform() != second.Pose {
		t.Errorf("transform = %+v, want %+v", c.Asset().Transform(), second.Pose)
	}
	if c.Placements() != 2 {
		t.Errorf("placements = %d, want 2", c.Placements())
	}
}

func TestConfirmNoOp(t *testing.T) {
	tests := []struct {
		name   string
		loaded bool
		r      tracking.Reticle
	}{
		{"reticle hidden", true, hidden},
		{"asset loading, reticle visible", false, visible(1)},
		{"asset loading, reticle hidden", false, hidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAsset(1)
			if tt.loaded {
				a.MarkLoaded(&asset.Model{})
			}
			c := NewController(a)
			c.Observe(tt.r)

			beforeState := c.State()
			beforeAsset := *c.Asset()

			if c.Confirm(tt.r) {
				t.Error("Confirm returned true")
			}
			if c.State() != beforeState {
				t.Errorf("state changed %v → %v", beforeState, c.State())
			}
			if *c.Asset() != beforeAsset {
				t.Errorf("asset changed: %+v → %+v", beforeAsset, *c.Asset())
			}
		})
	}
}

func TestPlacedAssetSurvivesTrackingLoss(t *testing.T) {
	c := loadedController(t)
	r := visible(3)
	c.Observe(r)
	c.Confirm(r)

	c.Observe(hidden)
	if c.State() != Placed {
		t.Errorf("state = %v, want Placed", c.State())
	}
	if !c.Asset().Visible() || c.Asset().Transform() != r.Pose {
		t.Error("tracking loss moved or hid the placed asset")
	}

	// Confirm while lost is a no-op even after placement.
	if c.Confirm(hidden) {
		t.Error("Confirm with hidden reticle returned true")
	}
	if c.Asset().Transform() != r.Pose {
		t.Error("transform changed by a no-op confirm")
	}
}

func TestAssetLoadOutcomeOnce(t *testing.T) {
	a := NewAsset(1)
	boom := errors.New("404")
	if !a.MarkFailed(boom) {
		t.Fatal("MarkFailed returned false")
	}
	if a.MarkLoaded(&asset.Model{}) {
		t.Error("MarkLoaded after failure returned true")
	}
	if a.MarkFailed(errors.New("again")) {
		t.Error("second MarkFailed returned true")
	}
	if a.Loaded() || !a.Failed() || !errors.Is(a.Err(), boom) {
		t.Errorf("loaded=%v failed=%v err=%v", a.Loaded(), a.Failed(), a.Err())
	}

	c := NewController(a)
	c.Observe(visible(1))
	if c.Confirm(visible(1)) {
		t.Error("failed asset was placed")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Searching: "Searching", Ready: "Ready", Placed: "Placed", State(7): "Unknown"} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
