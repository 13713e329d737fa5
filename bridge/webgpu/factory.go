// This file is part of Mapsurface.
//
// Mapsurface is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mapsurface is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mapsurface.  If not, see <https://www.gnu.org/licenses/>.

package webgpu

import (
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/logger"
)

// tag to use for log entries from this package
const logTag = "webgpu"

// Options for factory creation. The zero value selects sensible defaults
type Options struct {
	// minimum time between frame notifications. zero selects
	// bridge.DefaultMinInterval
	MinFrameInterval time.Duration

	// number of presents for which notification is forced. zero selects
	// bridge.DefaultActiveFrames
	ActiveFrameBudget int
}

// Factory implements bridge.Factory for the zero-copy WebGPU backend
type Factory struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string

	targets targetSet

	// the export handle. for this backend it is the colour texture itself.
	// guarded by the coordinator's critical section
	export struct {
		handle hal.Texture
	}

	co       *bridge.Coordinator
	notifier *bridge.Notifier

	draw   *context
	upload *context

	valid     atomic.Bool
	destroyed atomic.Bool
}

// NewFactory is the preferred method of initialisation for the Factory type.
//
// Construction failure does not return an error: it returns a factory for
// which IsValid() is false and whose contexts fail safely. The reasons for
// the failure are in the central logger
func NewFactory(width int32, height int32, scale float32, opts Options) *Factory {
	fct := &Factory{}
	fct.notifier = bridge.NewNotifier(opts.MinFrameInterval, opts.ActiveFrameBudget)
	fct.co = bridge.NewCoordinator(fct, fct.notifier, width, height, scale)
	fct.draw = newContext(fct, true)
	fct.upload = newContext(fct, false)

	if err := fct.initGPU(); err != nil {
		logger.Logf(logTag, "create: %v", err)
		return fct
	}

	if err := fct.targets.reallocate(fct.device, uint32(width), uint32(height)); err != nil {
		logger.Logf(logTag, "create: %v", err)
		fct.teardown()
		return fct
	}
	if err := fct.targets.reattach(fct.device); err != nil {
		logger.Logf(logTag, "create: %v", err)
		fct.teardown()
		return fct
	}
	fct.export.handle = fct.targets.colourTex

	fct.valid.Store(true)
	logger.Logf(logTag, "created %dx%d surface on %s", width, height, fct.adapterName)

	return fct
}

func (fct *Factory) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return curated.Errorf("webgpu: vulkan backend not registered")
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return curated.Errorf("webgpu: %v", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return curated.Errorf("webgpu: no adapters found")
	}

	// prefer real GPUs over software rasterisers
	selected := adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = adapters[i]
			break
		}
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = adapters[i]
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return curated.Errorf("webgpu: open adapter: %v", err)
	}

	fct.instance = instance
	fct.device = openDev.Device
	fct.queue = openDev.Queue
	fct.adapterName = selected.Info.Name

	return nil
}

// DrawContext implements the bridge.Factory interface
func (fct *Factory) DrawContext() bridge.Context {
	return fct.draw
}

// UploadContext implements the bridge.Factory interface
func (fct *Factory) UploadContext() bridge.Context {
	return fct.upload
}

// IsValid implements the bridge.Factory interface
func (fct *Factory) IsValid() bool {
	return fct.valid.Load() && !fct.destroyed.Load()
}

// SetSurfaceSize implements the bridge.Factory interface
func (fct *Factory) SetSurfaceSize(w int32, h int32) bool {
	if !fct.IsValid() {
		return false
	}
	return fct.co.Resize(w, h)
}

// ExportHandle implements the bridge.Factory interface. The concrete type of
// the handle is hal.Texture. Because this backend is zero-copy, resizing
// replaces the texture itself, which is exactly why handles must never be
// cached by the host
func (fct *Factory) ExportHandle() bridge.Handle {
	if !fct.IsValid() {
		return nil
	}

	var handle bridge.Handle
	fct.co.WithFrame(func(_ bridge.Frame) error {
		if fct.export.handle != nil {
			handle = fct.export.handle
		}
		return nil
	})

	return handle
}

// SetFrameCallback implements the bridge.Factory interface
func (fct *Factory) SetFrameCallback(f func()) {
	fct.notifier.SetFrameCallback(f)
}

// SetKeepAliveCallback implements the bridge.Factory interface
func (fct *Factory) SetKeepAliveCallback(f func()) {
	fct.notifier.SetKeepAliveCallback(f)
}

// SetPresentAvailable implements the bridge.Factory interface
func (fct *Factory) SetPresentAvailable(available bool) {
	fct.notifier.SetAvailable(available)
}

// Destroy implements the bridge.Factory interface
func (fct *Factory) Destroy() {
	if !fct.destroyed.CompareAndSwap(false, true) {
		return
	}

	// contexts become unusable before any GPU resource is released
	fct.valid.Store(false)

	fct.teardown()
	logger.Log(logTag, "destroyed")
}

func (fct *Factory) teardown() {
	// the encoder and the attachment textures are coordinator-guarded
	// state. a render call blocked on the critical section must find them
	// gone, not half-destroyed
	fct.co.WithFrame(func(_ bridge.Frame) error {
		fct.export.handle = nil
		if fct.device != nil {
			fct.draw.abandonFrame()
			fct.targets.destroy(fct.device)
		}
		return nil
	})

	if fct.device != nil {
		fct.device.Destroy()
		fct.device = nil
		fct.queue = nil
	}
	if fct.instance != nil {
		fct.instance.Destroy()
		fct.instance = nil
	}
}

// the remaining functions implement the bridge.ResizeTarget interface. they
// are called by the coordinator with its critical section held

// SaveCurrent implements the bridge.ResizeTarget interface. WebGPU has no
// thread-bound current context so there is nothing to save
func (fct *Factory) SaveCurrent() func() {
	return func() {}
}

// MakeRenderCurrent implements the bridge.ResizeTarget interface
func (fct *Factory) MakeRenderCurrent() error {
	return nil
}

// ReallocateStorage implements the bridge.ResizeTarget interface
func (fct *Factory) ReallocateStorage(w int32, h int32) error {
	// a frame half-recorded against the old textures can never be
	// submitted. throw it away before the textures go
	fct.draw.abandonFrame()
	return fct.targets.reallocate(fct.device, uint32(w), uint32(h))
}

// ReattachStorage implements the bridge.ResizeTarget interface
func (fct *Factory) ReattachStorage() error {
	return fct.targets.reattach(fct.device)
}

// UpdateClipRegion implements the bridge.ResizeTarget interface
func (fct *Factory) UpdateClipRegion(w int32, h int32) {
	fct.draw.setClip(w, h)
}

// RecreateExport implements the bridge.ResizeTarget interface. The colour
// texture of the render target is the export texture, so the new export
// already exists. Publishing it through the handle cell is what invalidates
// every previously returned handle
func (fct *Factory) RecreateExport(w int32, h int32) error {
	if fct.targets.colourTex == nil {
		return curated.Errorf("webgpu: no colour texture to export")
	}
	fct.export.handle = fct.targets.colourTex
	return nil
}
