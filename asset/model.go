package asset

import (
	"github.com/gogpu/arplace/xr"
)

// Model is the renderer-facing summary of a loaded asset.
type Model struct {
	// Name is the first mesh name, or the source file name.
	Name string

	// Source is the path the model was loaded from.
	Source string

	// Min and Max bound every vertex position in model space.
	Min, Max xr.Vec3

	Meshes int
	Nodes  int
}

// Size returns the extent of the bounding box.
func (m *Model) Size() xr.Vec3 {
	return m.Max.Sub(m.Min)
}

// Center returns the middle of the bounding box.
func (m *Model) Center() xr.Vec3 {
	return m.Min.Add(m.Max).Mul(0.5)
}

// UnitModel returns a 1m cube resting on its base, used when a document
// carries no position bounds.
func UnitModel(name string) *Model {
	return &Model{
		Name: name,
		Min:  xr.V3(-0.5, 0, -0.5),
		Max:  xr.V3(0.5, 1, 0.5),
	}
}
