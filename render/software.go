// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"math"
	"sort"

	"golang.org/x/image/vector"

	"github.com/gogpu/arplace/xr"
)

// SoftwareRenderer is a CPU preview renderer.
//
// Each frame clears the target to transparent, then draws the reticle as an
// anti-aliased ring and the asset as the filled silhouette of its bounding
// box. Nodes with any vertex outside the camera depth range are skipped.
//
// Example:
//
//	renderer := render.NewSoftwareRenderer()
//	target := render.NewPixmapTarget(640, 480)
//	renderer.Render(target, scene, camera)
type SoftwareRenderer struct {
	// rasterizer is reused between frames while the target size is stable.
	rasterizer *vector.Rasterizer
	ring       []xr.Vec3 // outer ring then inner ring, node space

	frames int
	drawn  int
}

// NewSoftwareRenderer creates a new CPU-based software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{ring: ringGeometry()}
}

// ringGeometry builds the reticle ring in the XY plane and rotates it -90°
// about X so it lies flat on the surface.
func ringGeometry() []xr.Vec3 {
	flat := xr.AxisAngle(xr.V3(1, 0, 0), -math.Pi/2)
	pts := make([]xr.Vec3, 0, 2*ReticleSegments)
	for _, r := range []float64{ReticleOuterRadius, ReticleInnerRadius} {
		for i := 0; i < ReticleSegments; i++ {
			a := 2 * math.Pi * float64(i) / ReticleSegments
			pts = append(pts, flat.Rotate(xr.V3(r*math.Cos(a), r*math.Sin(a), 0)))
		}
	}
	return pts
}

// Render draws the scene to the target.
// Returns an error if the target is GPU-only (no Pixels() support).
func (r *SoftwareRenderer) Render(target RenderTarget, scene *Scene, camera *Camera) error {
	if target == nil {
		return errors.New("render: nil target")
	}
	pixels := target.Pixels()
	if pixels == nil {
		return errors.New("render: target does not support CPU rendering")
	}
	if camera == nil {
		return errors.New("render: nil camera")
	}

	width, height := target.Width(), target.Height()
	dst := &image.RGBA{
		Pix:    pixels,
		Stride: target.Stride(),
		Rect:   image.Rect(0, 0, width, height),
	}
	clear(pixels)
	r.frames++
	r.drawn = 0

	if scene == nil {
		return nil
	}
	for _, n := range scene.Nodes() {
		if n == nil || !n.Visible {
			continue
		}
		var drew bool
		switch n.Kind {
		case NodeRing:
			drew = r.drawRing(dst, n, camera)
		case NodeModel:
			drew = r.drawModel(dst, n, camera)
		}
		if drew {
			r.drawn++
		}
	}
	return nil
}

// Flush is a no-op; software rendering is synchronous.
func (r *SoftwareRenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *SoftwareRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{SupportsAntialiasing: true}
}

// Frames returns how many frames were rendered.
func (r *SoftwareRenderer) Frames() int { return r.frames }

// LastDrawn returns how many nodes the last frame drew.
func (r *SoftwareRenderer) LastDrawn() int { return r.drawn }

func (r *SoftwareRenderer) rasterizerFor(w, h int) *vector.Rasterizer {
	if r.rasterizer == nil {
		r.rasterizer = vector.NewRasterizer(w, h)
	} else {
		r.rasterizer.Reset(w, h)
	}
	return r.rasterizer
}

func (r *SoftwareRenderer) project(dst *image.RGBA, n *Node, camera *Camera, pts []xr.Vec3) ([][2]float32, bool) {
	m := n.Matrix()
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	out := make([][2]float32, len(pts))
	for i, p := range pts {
		world, _ := m.TransformPoint(p)
		x, y, ok := camera.Project(world, w, h)
		if !ok {
			return nil, false
		}
		out[i] = [2]float32{float32(x), float32(y)}
	}
	return out, true
}

func (r *SoftwareRenderer) drawRing(dst *image.RGBA, n *Node, camera *Camera) bool {
	pts, ok := r.project(dst, n, camera, r.ring)
	if !ok {
		return false
	}
	z := r.rasterizerFor(dst.Rect.Dx(), dst.Rect.Dy())
	outer, inner := pts[:ReticleSegments], pts[ReticleSegments:]

	z.MoveTo(outer[0][0], outer[0][1])
	for _, p := range outer[1:] {
		z.LineTo(p[0], p[1])
	}
	z.ClosePath()

	// Opposite winding cuts the hole.
	last := len(inner) - 1
	z.MoveTo(inner[last][0], inner[last][1])
	for i := last - 1; i >= 0; i-- {
		z.LineTo(inner[i][0], inner[i][1])
	}
	z.ClosePath()

	z.Draw(dst, dst.Rect, image.NewUniform(n.Color), image.Point{})
	return true
}

func (r *SoftwareRenderer) drawModel(dst *image.RGBA, n *Node, camera *Camera) bool {
	lo, hi := n.Min, n.Max
	corners := []xr.Vec3{
		xr.V3(lo.X, lo.Y, lo.Z), xr.V3(hi.X, lo.Y, lo.Z),
		xr.V3(lo.X, hi.Y, lo.Z), xr.V3(hi.X, hi.Y, lo.Z),
		xr.V3(lo.X, lo.Y, hi.Z), xr.V3(hi.X, lo.Y, hi.Z),
		xr.V3(lo.X, hi.Y, hi.Z), xr.V3(hi.X, hi.Y, hi.Z),
	}
	pts, ok := r.project(dst, n, camera, corners)
	if !ok {
		return false
	}
	hull := convexHull(pts)
	if len(hull) < 3 {
		return false
	}

	z := r.rasterizerFor(dst.Rect.Dx(), dst.Rect.Dy())
	z.MoveTo(hull[0][0], hull[0][1])
	for _, p := range hull[1:] {
		z.LineTo(p[0], p[1])
	}
	z.ClosePath()
	z.Draw(dst, dst.Rect, image.NewUniform(n.Color), image.Point{})
	return true
}

// convexHull returns the hull of pts in order (Andrew's monotone chain).
func convexHull(pts [][2]float32) [][2]float32 {
	if len(pts) < 3 {
		return pts
	}
	sorted := append([][2]float32(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	cross := func(o, a, b [2]float32) float32 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	hull := make([][2]float32, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// Ensure SoftwareRenderer implements CapableRenderer.
var _ CapableRenderer = (*SoftwareRenderer)(nil)
