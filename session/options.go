package session

import (
	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/xr"
)

// Option configures a Manager.
type Option func(*options)

type options struct {
	mode      xr.SessionMode
	local     bool
	signals   arplace.SignalFunc
	idFactory func() string
}

func defaultOptions() options {
	return options{
		mode:  xr.ModeImmersiveAR,
		local: true,
	}
}

// WithMode overrides the requested session mode (default immersive-ar).
func WithMode(mode xr.SessionMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithLocalSpace controls whether the stable "local" space is requested as
// an optional feature. When disabled, poses are reported in viewer space.
func WithLocalSpace(enabled bool) Option {
	return func(o *options) {
		o.local = enabled
	}
}

// WithSignals sets the receiver for sessionStarted/sessionEnded.
func WithSignals(fn arplace.SignalFunc) Option {
	return func(o *options) {
		o.signals = fn
	}
}

// WithIDFactory replaces the session ID generator. Used by tests for
// deterministic log output.
func WithIDFactory(fn func() string) Option {
	return func(o *options) {
		o.idFactory = fn
	}
}
