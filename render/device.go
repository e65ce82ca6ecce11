// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The renderer RECEIVES the device from the host, it does NOT create one.
// DeviceHandle is an alias for gpucontext.DeviceProvider so any gpucontext
// host can be passed directly.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by hosts that expose their HAL device.
// HalDevice returns a hal.Device typed as any to avoid importing the
// host framework.
type halProvider interface {
	HalDevice() any
}

// TextureView represents a view into a GPU texture.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports a software adapter, since the null device renders on
// the CPU.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeSoftware}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
