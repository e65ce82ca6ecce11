// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// Renderer draws a scene to a render target.
//
// Renderers do not modify the scene and keep no per-frame state the caller
// depends on, so the same scene can be drawn to several targets.
//
// Thread Safety: Renderers are NOT thread-safe.
type Renderer interface {
	// Render draws scene as seen by camera into target. Nodes whose Visible
	// flag is false are skipped. Returns an error if the target cannot be
	// drawn to (e.g., a GPU-only target for a CPU renderer).
	Render(target RenderTarget, scene *Scene, camera *Camera) error

	// Flush ensures all pending rendering operations are complete.
	Flush() error
}

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if this is a GPU-accelerated renderer.
	IsGPU bool

	// SupportsAntialiasing indicates if anti-aliased rendering is supported.
	SupportsAntialiasing bool

	// SupportsSurfaceTargets indicates if GPU-only targets can be drawn.
	SupportsSurfaceTargets bool
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	Renderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}
