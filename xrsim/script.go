package xrsim

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/arplace/xr"
)

// Config describes the simulated device's capabilities and negotiation
// timing. Delays are counted in steps; zero completes a request
// immediately.
type Config struct {
	// Unsupported makes IsSessionSupported report false.
	Unsupported bool `yaml:"unsupported,omitempty" cbor:"unsupported,omitempty"`

	SessionDelay int `yaml:"session_delay,omitempty" cbor:"session_delay,omitempty"`
	ViewerDelay  int `yaml:"viewer_delay,omitempty" cbor:"viewer_delay,omitempty"`
	LocalDelay   int `yaml:"local_delay,omitempty" cbor:"local_delay,omitempty"`
	SourceDelay  int `yaml:"source_delay,omitempty" cbor:"source_delay,omitempty"`

	RejectSession bool `yaml:"reject_session,omitempty" cbor:"reject_session,omitempty"`
	RejectSource  bool `yaml:"reject_source,omitempty" cbor:"reject_source,omitempty"`
	NoLocalSpace  bool `yaml:"no_local_space,omitempty" cbor:"no_local_space,omitempty"`

	// HoldSession leaves the session request pending forever.
	HoldSession bool `yaml:"hold_session,omitempty" cbor:"hold_session,omitempty"`

	// AbortAtStep makes the runtime terminate the live session at the
	// start of that step. Zero disables it.
	AbortAtStep int `yaml:"abort_at_step,omitempty" cbor:"abort_at_step,omitempty"`
}

// AssetSpec controls the simulated asset loader.
type AssetSpec struct {
	Delay int  `yaml:"delay,omitempty" cbor:"delay,omitempty"`
	Fail  bool `yaml:"fail,omitempty" cbor:"fail,omitempty"`
}

// PoseSpec is a pose in script form. Orientation is x, y, z, w; when it is
// empty, Pitch (degrees about +X) is used instead.
type PoseSpec struct {
	Position    [3]float64 `yaml:"position" cbor:"position"`
	Orientation []float64  `yaml:"orientation,omitempty" cbor:"orientation,omitempty"`
	Pitch       float64    `yaml:"pitch,omitempty" cbor:"pitch,omitempty"`

	// Untracked hits cannot be related to the requested space.
	Untracked bool `yaml:"untracked,omitempty" cbor:"untracked,omitempty"`
}

// Pose converts the spec to a pose in space.
func (p PoseSpec) Pose(space xr.SpaceKind) xr.Pose {
	pos := xr.V3(p.Position[0], p.Position[1], p.Position[2])
	q := xr.IdentityQuat()
	switch {
	case len(p.Orientation) == 4:
		q = xr.Quat{X: p.Orientation[0], Y: p.Orientation[1], Z: p.Orientation[2], W: p.Orientation[3]}
	case p.Pitch != 0:
		q = xr.AxisAngle(xr.V3(1, 0, 0), p.Pitch*math.Pi/180)
	}
	return xr.NewPose(space, pos, q)
}

// FrameSpec is the input for one step.
type FrameSpec struct {
	Hits []PoseSpec `yaml:"hits,omitempty" cbor:"hits,omitempty"`

	// Error makes the hit-test query fail on this step.
	Error bool `yaml:"error,omitempty" cbor:"error,omitempty"`

	// Confirm delivers a confirm event before this step runs.
	Confirm bool `yaml:"confirm,omitempty" cbor:"confirm,omitempty"`

	// End ends the session from the user side before this step runs.
	End bool `yaml:"end,omitempty" cbor:"end,omitempty"`

	// Repeat expands the entry into that many consecutive steps.
	Repeat int `yaml:"repeat,omitempty" cbor:"-"`
}

// Script is a scripted run.
type Script struct {
	Name   string      `yaml:"name,omitempty"`
	Device Config      `yaml:"device"`
	Asset  AssetSpec   `yaml:"asset"`
	Viewer *PoseSpec   `yaml:"viewer,omitempty"`
	Frames []FrameSpec `yaml:"frames"`
}

// DefaultViewer is the viewer pose used when a script names none: 1.2m
// above the floor, pitched 45 degrees down.
var DefaultViewer = PoseSpec{Position: [3]float64{0, 1.2, 0}, Pitch: -45}

// ParseScript decodes and validates a YAML script. Repeats are expanded.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("xrsim: parse script: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	s.Frames = expand(s.Frames)
	return &s, nil
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xrsim: %w", err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes the script as YAML.
func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Script) validate() error {
	var errs []error
	c := s.Device
	for name, d := range map[string]int{
		"session_delay": c.SessionDelay,
		"viewer_delay":  c.ViewerDelay,
		"local_delay":   c.LocalDelay,
		"source_delay":  c.SourceDelay,
		"asset.delay":   s.Asset.Delay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("xrsim: %s must not be negative", name))
		}
	}
	for i, f := range s.Frames {
		if f.Repeat < 0 {
			errs = append(errs, fmt.Errorf("xrsim: frame %d: repeat must not be negative", i))
		}
		for j, h := range f.Hits {
			if n := len(h.Orientation); n != 0 && n != 4 {
				errs = append(errs, fmt.Errorf("xrsim: frame %d hit %d: orientation needs 4 components, got %d", i, j, n))
			}
		}
	}
	return errors.Join(errs...)
}

func expand(frames []FrameSpec) []FrameSpec {
	out := make([]FrameSpec, 0, len(frames))
	for _, f := range frames {
		n := max(f.Repeat, 1)
		f.Repeat = 0
		for range n {
			out = append(out, f)
		}
	}
	return out
}

// ViewerPose returns the script's viewer pose spec.
func (s *Script) ViewerPose() PoseSpec {
	if s.Viewer != nil {
		return *s.Viewer
	}
	return DefaultViewer
}
