// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/arplace"
)

//go:embed shaders/placement.wgsl
var placementShaderWGSL string

// ErrSurfaceTargetUnsupported is returned when a GPU-only target is drawn
// before the surface pipeline exists.
var ErrSurfaceTargetUnsupported = errors.New("render: GPU surface targets not yet supported")

// GPURenderer renders with the GPU device provided by the host application.
//
// On creation it compiles the placement shader from WGSL to SPIR-V with
// naga and, when the host exposes its HAL device, creates the shader module
// on it. Frames drawn to CPU targets use the software path.
//
// Example:
//
//	renderer, err := render.NewGPURenderer(app.GPUContextProvider())
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
type GPURenderer struct {
	handle DeviceHandle
	device hal.Device
	module hal.ShaderModule

	// spirv is the compiled placement shader.
	spirv []uint32

	softwareFallback *SoftwareRenderer
}

// NewGPURenderer creates a GPU renderer on the host's device.
//
// Returns an error if the handle is nil or the shader fails to compile.
// A HAL device that rejects the shader module is logged and the renderer
// continues on the software path.
func NewGPURenderer(handle DeviceHandle) (*GPURenderer, error) {
	if handle == nil {
		return nil, errors.New("render: nil device handle")
	}

	spirvBytes, err := naga.Compile(placementShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("render: failed to compile placement shader: %w", err)
	}

	r := &GPURenderer{
		handle:           handle,
		spirv:            spirvWords(spirvBytes),
		softwareFallback: NewSoftwareRenderer(),
	}

	hp, ok := handle.(halProvider)
	if !ok {
		return r, nil
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return r, nil
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "placement_shader",
		Source: hal.ShaderSource{
			SPIRV: r.spirv,
		},
	})
	if err != nil {
		arplace.Logger().Warn("placement shader module rejected, using software path", "err", err)
		return r, nil
	}
	r.device = device
	r.module = module
	return r, nil
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// Render draws the scene to the target. CPU targets use the software
// path; GPU-only targets return ErrSurfaceTargetUnsupported.
func (r *GPURenderer) Render(target RenderTarget, scene *Scene, camera *Camera) error {
	if target == nil {
		return errors.New("render: nil target")
	}
	if target.Pixels() != nil {
		return r.softwareFallback.Render(target, scene, camera)
	}
	return ErrSurfaceTargetUnsupported
}

// Flush is a no-op until the surface pipeline submits command buffers.
func (r *GPURenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities. IsGPU stays false while
// every frame is rasterized on the software path, even when the shader
// module exists; HasShaderModule reports that separately.
func (r *GPURenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		SupportsAntialiasing: true,
	}
}

// SPIRV returns the compiled placement shader.
func (r *GPURenderer) SPIRV() []uint32 {
	return r.spirv
}

// HasShaderModule reports whether the shader module lives on a HAL device.
func (r *GPURenderer) HasShaderModule() bool {
	return r.module != nil
}

// DeviceHandle returns the underlying device handle.
func (r *GPURenderer) DeviceHandle() DeviceHandle {
	return r.handle
}

// Close releases the shader module. Safe to call more than once.
func (r *GPURenderer) Close() {
	if r.module != nil {
		r.device.DestroyShaderModule(r.module)
		r.module = nil
	}
}

// Ensure GPURenderer implements CapableRenderer.
var _ CapableRenderer = (*GPURenderer)(nil)
