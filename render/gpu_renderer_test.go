// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

const spirvMagic = 0x07230203

func newGPURendererOrSkip(t *testing.T, h DeviceHandle) *GPURenderer {
	t.Helper()
	r, err := NewGPURenderer(h)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("naga limitation: %v", err)
		}
		t.Fatalf("NewGPURenderer() = %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestNewGPURendererNilHandle(t *testing.T) {
	if _, err := NewGPURenderer(nil); err == nil {
		t.Error("nil handle accepted")
	}
}

func TestNullDeviceHandle(t *testing.T) {
	var h DeviceHandle = NullDeviceHandle{}
	if h.Device() != nil || h.Queue() != nil || h.Adapter() != nil {
		t.Error("null handle exposes a device")
	}
	info := h.AdapterInfo()
	if info.Type != gpucontext.AdapterTypeSoftware || info.Name == "" {
		t.Errorf("AdapterInfo() = %+v, want a named software adapter", info)
	}
	if h.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("SurfaceFormat() = %v", h.SurfaceFormat())
	}
}

func TestPlacementShaderCompiles(t *testing.T) {
	if placementShaderWGSL == "" {
		t.Fatal("placement shader source is empty")
	}
	r := newGPURendererOrSkip(t, NullDeviceHandle{})

	words := r.SPIRV()
	if len(words) < 5 {
		t.Fatalf("SPIR-V has %d words", len(words))
	}
	if words[0] != spirvMagic {
		t.Errorf("SPIR-V magic = %#x, want %#x", words[0], spirvMagic)
	}
	if r.HasShaderModule() {
		t.Error("null device produced a shader module")
	}
	caps := r.Capabilities()
	if caps.IsGPU || caps.SupportsSurfaceTargets {
		t.Errorf("Capabilities() = %+v, want CPU rasterization only", caps)
	}
	if _, ok := r.DeviceHandle().(NullDeviceHandle); !ok {
		t.Error("DeviceHandle not preserved")
	}
}

func TestGPURendererTargets(t *testing.T) {
	r := newGPURendererOrSkip(t, NullDeviceHandle{})

	if err := r.Render(NewPixmapTarget(16, 16), NewScene(), NewCamera()); err != nil {
		t.Errorf("CPU target: %v", err)
	}
	surface := NewSurfaceTarget(16, 16, gputypes.TextureFormatBGRA8Unorm, nil)
	if err := r.Render(surface, NewScene(), NewCamera()); !errors.Is(err, ErrSurfaceTargetUnsupported) {
		t.Errorf("surface target: err = %v, want ErrSurfaceTargetUnsupported", err)
	}
	if err := r.Render(nil, NewScene(), NewCamera()); err == nil {
		t.Error("nil target accepted")
	}
	if err := r.Flush(); err != nil {
		t.Errorf("Flush() = %v", err)
	}
	r.Close()
	r.Close()
}

func TestSpirvWords(t *testing.T) {
	got := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 0xff})
	if len(got) != 1 || got[0] != spirvMagic {
		t.Errorf("spirvWords = %#x", got)
	}
}
