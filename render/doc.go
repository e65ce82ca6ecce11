// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render is the output boundary of the placement core.
//
// The core never manages pixels. Once per frame it updates two scene nodes,
// the reticle and the placed asset, and hands the scene and camera to a
// Renderer. The host supplies the Renderer and the RenderTarget.
//
// # Core Interfaces
//
//   - Renderer: draws a Scene as seen by a Camera into a RenderTarget
//   - RenderTarget: where output goes (CPU pixmap or host surface)
//   - DeviceHandle: GPU device access from the host application
//
// # Implementations
//
//   - SoftwareRenderer: CPU preview renderer built on golang.org/x/image/vector.
//     Draws the reticle ring and the asset's bounding volume over a transparent
//     background so passthrough video shows beneath.
//   - GPURenderer: prepares the placement shader (WGSL compiled with naga) on
//     the host's HAL device, falling back to software for CPU targets.
//
// # Usage
//
//	target := render.NewPixmapTarget(640, 480)
//	renderer := render.NewSoftwareRenderer()
//	scene := render.NewScene()
//	camera := render.NewCamera()
//
//	scene.Reticle.SetPose(hitPose)
//	scene.Reticle.Visible = true
//	if err := renderer.Render(target, scene, camera); err != nil {
//	    log.Printf("render failed: %v", err)
//	}
//
// # Thread Safety
//
// Renderers are NOT thread-safe. Each renderer should be used from the
// frame-dispatch goroutine only.
package render
