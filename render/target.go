// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// RenderTarget defines where rendering output goes.
//
// Targets may support CPU access (Pixels), GPU access (TextureView), or both.
// The Renderer implementation chooses the appropriate access method.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view for this target.
	// Returns nil for CPU-only targets.
	TextureView() TextureView

	// Pixels returns direct access to RGBA pixel data.
	// Returns nil for GPU-only targets.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
//
// Example:
//
//	target := render.NewPixmapTarget(640, 480)
//	renderer.Render(target, scene, camera)
//	png.Encode(w, target.Image())
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureView returns nil as this is a CPU-only target.
func (t *PixmapTarget) TextureView() TextureView {
	return nil
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)

// SurfaceTarget wraps the host's presentation surface for one frame.
// It has no CPU access.
type SurfaceTarget struct {
	width  int
	height int
	format gputypes.TextureFormat
	view   TextureView
}

// NewSurfaceTarget creates a render target from a host surface view.
func NewSurfaceTarget(width, height int, format gputypes.TextureFormat, view TextureView) *SurfaceTarget {
	return &SurfaceTarget{
		width:  width,
		height: height,
		format: format,
		view:   view,
	}
}

// Width returns the surface width in pixels.
func (t *SurfaceTarget) Width() int { return t.width }

// Height returns the surface height in pixels.
func (t *SurfaceTarget) Height() int { return t.height }

// Format returns the surface pixel format.
func (t *SurfaceTarget) Format() gputypes.TextureFormat { return t.format }

// TextureView returns the current frame's texture view.
func (t *SurfaceTarget) TextureView() TextureView { return t.view }

// Pixels returns nil as surfaces do not support CPU access.
func (t *SurfaceTarget) Pixels() []byte { return nil }

// Stride returns 0 as surfaces do not support CPU access.
func (t *SurfaceTarget) Stride() int { return 0 }

// Ensure SurfaceTarget implements RenderTarget.
var _ RenderTarget = (*SurfaceTarget)(nil)
