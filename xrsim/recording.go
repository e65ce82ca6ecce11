package xrsim

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// RecordingVersion is the current recording format version.
const RecordingVersion = 1

// encMode uses Core Deterministic Encoding so the same run always produces
// identical bytes.
var encMode cbor.EncMode

// decMode ignores unknown fields so newer recordings still decode.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("xrsim: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("xrsim: CBOR decoder initialization failed: " + err.Error())
	}
}

// StepRecord is the input and observed outcome of one step.
type StepRecord struct {
	Step      int       `cbor:"step"`
	Input     FrameSpec `cbor:"input"`
	Ran       bool      `cbor:"ran"`
	Session   string    `cbor:"session"`
	Placement string    `cbor:"placement"`
	Reticle   bool      `cbor:"reticle"`
	Asset     bool      `cbor:"asset"`
}

// Recording is a captured run.
type Recording struct {
	Version int          `cbor:"version"`
	Name    string       `cbor:"name,omitempty"`
	Device  Config       `cbor:"device"`
	Asset   AssetSpec    `cbor:"asset"`
	Viewer  PoseSpec     `cbor:"viewer"`
	Steps   []StepRecord `cbor:"steps"`
}

// NewRecording starts an empty recording of s.
func NewRecording(s *Script) *Recording {
	return &Recording{
		Version: RecordingVersion,
		Name:    s.Name,
		Device:  s.Device,
		Asset:   s.Asset,
		Viewer:  s.ViewerPose(),
	}
}

// Add appends one step.
func (r *Recording) Add(rec StepRecord) {
	r.Steps = append(r.Steps, rec)
}

// Script rebuilds the script that produced the recording.
func (r *Recording) Script() *Script {
	viewer := r.Viewer
	s := &Script{
		Name:   r.Name,
		Device: r.Device,
		Asset:  r.Asset,
		Viewer: &viewer,
		Frames: make([]FrameSpec, len(r.Steps)),
	}
	for i, st := range r.Steps {
		s.Frames[i] = st.Input
	}
	return s
}

// recordingWire has Recording's fields without its methods, so the codec
// does not call back into MarshalBinary.
type recordingWire Recording

// MarshalBinary encodes the recording as CBOR.
func (r *Recording) MarshalBinary() ([]byte, error) {
	return encMode.Marshal((*recordingWire)(r))
}

// DecodeRecording decodes a CBOR recording.
func DecodeRecording(data []byte) (*Recording, error) {
	var r Recording
	if err := decMode.Unmarshal(data, (*recordingWire)(&r)); err != nil {
		return nil, fmt.Errorf("xrsim: decode recording: %w", err)
	}
	if r.Version != RecordingVersion {
		return nil, fmt.Errorf("xrsim: unsupported recording version %d", r.Version)
	}
	return &r, nil
}

// WriteRecording writes r to path.
func WriteRecording(path string, r *Recording) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return fmt.Errorf("xrsim: encode recording: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRecording reads a recording from path.
func ReadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xrsim: %w", err)
	}
	return DecodeRecording(data)
}
