package tracking

import (
	"errors"
	"testing"

	"github.com/gogpu/arplace/xr"
)

type space struct{ kind xr.SpaceKind }

func (s space) Kind() xr.SpaceKind { return s.kind }

type source struct{}

func (source) Cancel() {}

type hit struct {
	pose xr.Pose
	ok   bool
}

func (h hit) Pose(xr.ReferenceSpace) (xr.Pose, bool) { return h.pose, h.ok }

type frame struct {
	results []xr.HitTestResult
	err     error
	queries int
}

func (f *frame) HitTestResults(xr.HitTestSource) ([]xr.HitTestResult, error) {
	f.queries++
	return f.results, f.err
}

func (f *frame) ViewerPose(xr.ReferenceSpace) (xr.Pose, bool) { return xr.Pose{}, false }

func pose(x float64) xr.Pose {
	return xr.NewPose(xr.SpaceLocal, xr.V3(x, 0, -1), xr.IdentityQuat())
}

func frameWith(poses ...xr.Pose) *frame {
	f := &frame{}
	for _, p := range poses {
		f.results = append(f.results, hit{pose: p, ok: true})
	}
	return f
}

var local = space{xr.SpaceLocal}

func TestUpdateTakesFirstResult(t *testing.T) {
	tr := NewTracker()
	// The second result is closer; the tracker still takes the first.
	r := tr.Update(frameWith(pose(3), pose(1)), source{}, local)

	if !r.Reticle.Visible {
		t.Fatal("reticle hidden with results present")
	}
	if r.Reticle.Pose != pose(3) {
		t.Errorf("pose = %+v, want first result %+v", r.Reticle.Pose, pose(3))
	}
	if !r.Found || r.Lost {
		t.Errorf("Found=%v Lost=%v, want Found only", r.Found, r.Lost)
	}
	if tr.Reticle() != r.Reticle {
		t.Error("Reticle() disagrees with Update result")
	}
}

func TestUpdateHidesReticle(t *testing.T) {
	tests := []struct {
		name   string
		frame  xr.Frame
		source xr.HitTestSource
		space  xr.ReferenceSpace
	}{
		{"no results", frameWith(), source{}, local},
		{"query error", &frame{err: errors.New("tracking lost")}, source{}, local},
		{"no source", frameWith(pose(1)), nil, local},
		{"no frame", nil, source{}, local},
		{"no space", frameWith(pose(1)), source{}, nil},
		{"pose unavailable", &frame{results: []xr.HitTestResult{hit{ok: false}}}, source{}, local},
		{"nil result", &frame{results: []xr.HitTestResult{nil}}, source{}, local},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Update(frameWith(pose(1)), source{}, local)

			r := tr.Update(tt.frame, tt.source, tt.space)
			if r.Reticle.Visible {
				t.Error("reticle visible")
			}
			if !r.Lost || r.Found {
				t.Errorf("Found=%v Lost=%v, want Lost only", r.Found, r.Lost)
			}
		})
	}
}

func TestUpdateNoCachingAcrossFrames(t *testing.T) {
	tr := NewTracker()
	steps := []struct {
		frame   *frame
		visible bool
		pose    xr.Pose
	}{
		{frameWith(pose(1)), true, pose(1)},
		{frameWith(pose(2)), true, pose(2)},
		{frameWith(), false, pose(2)},
		{frameWith(pose(5)), true, pose(5)},
	}
	for i, s := range steps {
		r := tr.Update(s.frame, source{}, local)
		if r.Reticle.Visible != s.visible {
			t.Errorf("step %d: visible = %v, want %v", i, r.Reticle.Visible, s.visible)
		}
		if s.visible && r.Reticle.Pose != s.pose {
			t.Errorf("step %d: pose = %+v, want %+v", i, r.Reticle.Pose, s.pose)
		}
		if s.frame.queries != 1 {
			t.Errorf("step %d: %d queries, want exactly 1", i, s.frame.queries)
		}
	}
}

func TestEdgesOnlyOnTransitions(t *testing.T) {
	tr := NewTracker()
	r := tr.Hide()
	if r.Found || r.Lost {
		t.Error("hidden → hidden reported an edge")
	}
	tr.Update(frameWith(pose(1)), source{}, local)
	r = tr.Update(frameWith(pose(2)), source{}, local)
	if r.Found || r.Lost {
		t.Error("visible → visible reported an edge")
	}
}

func BenchmarkUpdate(b *testing.B) {
	tr := NewTracker()
	f := frameWith(pose(1), pose(2))
	b.ReportAllocs()
	for b.Loop() {
		tr.Update(f, source{}, local)
	}
}
