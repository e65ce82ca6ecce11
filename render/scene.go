// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image/color"
	"math"

	"github.com/gogpu/arplace/xr"
)

// NodeKind selects how a node is drawn.
type NodeKind uint8

const (
	// NodeRing is a flat ring lying in the node's XZ plane.
	NodeRing NodeKind = iota

	// NodeModel is drawn as its bounding volume.
	NodeModel
)

// Reticle ring geometry, in meters.
const (
	ReticleInnerRadius = 0.15
	ReticleOuterRadius = 0.2
	ReticleSegments    = 32
)

// Node is a scene-graph node with settable position, orientation, scale
// and visibility.
type Node struct {
	Name        string
	Kind        NodeKind
	Position    xr.Vec3
	Orientation xr.Quat
	Scale       xr.Vec3
	Visible     bool
	Color       color.RGBA

	// Min and Max bound the model geometry in node space (NodeModel).
	Min, Max xr.Vec3
}

// SetPose copies position and orientation from p.
func (n *Node) SetPose(p xr.Pose) {
	n.Position = p.Position
	n.Orientation = p.Orientation
}

// SetUniformScale sets the same scale on all three axes.
func (n *Node) SetUniformScale(s float64) {
	n.Scale = xr.V3(s, s, s)
}

// Matrix returns the node's world transform.
func (n *Node) Matrix() xr.Mat4 {
	return xr.Compose(n.Position, n.Orientation, n.Scale)
}

// Scene holds the two nodes the placement core drives.
type Scene struct {
	Reticle *Node
	Asset   *Node
}

// NewScene creates a scene with a hidden reticle ring and a hidden asset
// node sized to a unit cube.
func NewScene() *Scene {
	return &Scene{
		Reticle: &Node{
			Name:        "reticle",
			Kind:        NodeRing,
			Orientation: xr.IdentityQuat(),
			Scale:       xr.V3(1, 1, 1),
			Color:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		},
		Asset: &Node{
			Name:        "asset",
			Kind:        NodeModel,
			Orientation: xr.IdentityQuat(),
			Scale:       xr.V3(1, 1, 1),
			Color:       color.RGBA{R: 120, G: 200, B: 255, A: 255},
			Min:         xr.V3(-0.5, 0, -0.5),
			Max:         xr.V3(0.5, 1, 0.5),
		},
	}
}

// Nodes returns the scene nodes in draw order.
func (s *Scene) Nodes() []*Node {
	return []*Node{s.Reticle, s.Asset}
}

// Camera is a perspective camera placed at Pose.
type Camera struct {
	Pose xr.Pose
	FovY float64 // vertical field of view, radians
	Near float64
	Far  float64
}

// NewCamera returns a camera at the origin looking down -Z with a 70° field
// of view and a 0.01–1000 m depth range.
func NewCamera() *Camera {
	return &Camera{
		Pose: xr.Pose{Orientation: xr.IdentityQuat()},
		FovY: 70 * math.Pi / 180,
		Near: 0.01,
		Far:  1000,
	}
}

// Project maps a point in the camera's reference space to pixel
// coordinates on a width×height target. ok is false when the point lies
// outside the depth range.
func (c *Camera) Project(p xr.Vec3, width, height int) (x, y float64, ok bool) {
	v, _ := c.Pose.Inverse().Matrix().TransformPoint(p)
	depth := -v.Z
	if depth < c.Near || depth > c.Far {
		return 0, 0, false
	}
	f := 1 / math.Tan(c.FovY/2)
	aspect := float64(width) / float64(height)
	ndcX := f / aspect * v.X / depth
	ndcY := f * v.Y / depth
	return (ndcX + 1) / 2 * float64(width), (1 - ndcY) / 2 * float64(height), true
}
