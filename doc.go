// Package arplace places a virtual 3D asset on a real-world surface found by
// a device's augmented-reality hit-testing capability.
//
// # Overview
//
// The interaction is "find a flat surface, then tap to place an object
// there". A live reticle follows the first surface the device reports under
// the view ray, and the asset moves to the reticle only when the user
// confirms (taps).
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/arplace/experience"
//	    "github.com/gogpu/arplace/render"
//	)
//
//	exp := experience.New(device, scheduler,
//	    experience.WithAsset("models/ice.glb"),
//	    experience.WithRenderer(render.NewSoftwareRenderer(), target),
//	)
//	if err := exp.Start(ctx); err != nil {
//	    // errors.Is(err, arplace.ErrCapabilityUnavailable): no AR on this device
//	}
//
//	// On every tap:
//	exp.Confirm()
//
// # Architecture
//
// The core is split into four small components, each owning only its own
// state:
//   - session: SessionManager, negotiates the AR session and the hit-test source
//   - tracking: SurfaceTracker, turns one frame's hit-test result into the reticle
//   - placement: PlacementController, Searching/Ready/Placed state machine
//   - frameloop: FrameLoop, runs the three above once per display refresh
//
// The xr package defines the device boundary. Rendering, asset loading and
// on-screen text are collaborators behind the render, asset and overlay
// packages. The experience package composes everything; xrsim provides a
// scripted device and cmd/arsim runs scenarios headlessly.
//
// # Threading
//
// Everything except Confirm runs on the host's frame-dispatch goroutine.
// Asynchronous device requests are modeled as xr.Future values that the
// frame loop polls; nothing in the core blocks a frame.
//
// # Logging
//
// arplace produces no log output by default. See SetLogger.
package arplace

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
