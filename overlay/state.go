package overlay

import (
	"errors"

	"github.com/gogpu/arplace"
)

// Message is a catalog key for one instruction.
type Message string

// Instruction keys.
const (
	MsgUnsupported Message = "overlay.unsupported"
	MsgStarting    Message = "overlay.starting"
	MsgScan        Message = "overlay.scan"
	MsgLoading     Message = "overlay.loading"
	MsgPlace       Message = "overlay.place"
	MsgMove        Message = "overlay.move"
	MsgFailed      Message = "overlay.failed"
	MsgEnded       Message = "overlay.ended"
)

// State follows the signal stream and picks the instruction to show.
// Handle has the arplace.SignalFunc signature. State is not safe for
// concurrent use.
type State struct {
	unsupported bool
	started     bool
	ended       bool
	surface     bool
	loaded      bool
	failed      bool
	placed      bool
}

// Handle updates the state for one signal.
func (s *State) Handle(sig arplace.Signal, _ error) {
	switch sig {
	case arplace.SignalSessionStarted:
		*s = State{started: true, loaded: s.loaded, failed: s.failed}
	case arplace.SignalSessionEnded:
		s.ended = true
		s.surface = false
	case arplace.SignalSurfaceFound:
		s.surface = true
	case arplace.SignalSurfaceLost:
		s.surface = false
	case arplace.SignalAssetLoaded:
		s.loaded = true
	case arplace.SignalAssetFailed:
		s.failed = true
	case arplace.SignalAssetPlaced:
		s.placed = true
	}
}

// StartFailed records the outcome of a failed start. Only a missing
// capability changes the instruction.
func (s *State) StartFailed(err error) {
	if errors.Is(err, arplace.ErrCapabilityUnavailable) {
		s.unsupported = true
	}
}

// Restart clears the per-session flags before a new start. The asset
// outcome is kept since the model is reused.
func (s *State) Restart() {
	*s = State{loaded: s.loaded, failed: s.failed}
}

// Instruction returns the key of the instruction to show.
func (s *State) Instruction() Message {
	switch {
	case s.unsupported:
		return MsgUnsupported
	case s.ended:
		return MsgEnded
	case !s.started:
		return MsgStarting
	case s.failed:
		return MsgFailed
	case !s.surface:
		return MsgScan
	case !s.loaded:
		return MsgLoading
	case s.placed:
		return MsgMove
	default:
		return MsgPlace
	}
}
