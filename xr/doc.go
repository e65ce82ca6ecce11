// Package xr defines the boundary between the placement core and the
// device's augmented-reality runtime.
//
// The types here mirror what an AR runtime hands to an application:
// a capability query, a negotiated Session, reference spaces, hit-test
// sources and per-frame hit-test results carrying a Pose. Asynchronous
// requests return a *Future that the caller polls from its frame loop;
// nothing in this package blocks.
//
// # Coordinate System
//
// Right-handed, meters, Y up, -Z forward from the viewer. Orientations
// are unit quaternions (x, y, z, w).
package xr
