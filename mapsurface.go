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

package mapsurface

import (
	"sync"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/bridge/sdlgl"
	"github.com/jharlow/mapsurface/bridge/webgpu"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/logger"
)

// sentinel error patterns for the package
const (
	BadDimensions = "mapsurface: bad surface dimensions: %dx%d"
	SurfaceExists = "mapsurface: surface %d exists: destroy it before creating another"
	CreateFailed  = "mapsurface: surface creation failed for %s backend"
)

// Plugin is the host-facing surface manager. One surface can be live at a
// time; it must be destroyed before another is created.
//
// All methods are safe for concurrent use. Host commands typically arrive
// on a platform thread while the engine presents from its render thread.
type Plugin struct {
	spec Specification

	crit struct {
		section sync.Mutex

		factory   bridge.Factory
		surfaceID int64

		// callbacks are remembered here so they survive surface recreation
		frameReady func()
		keepAlive  func()
	}

	nextID int64

	// factory constructor. replaceable in tests
	newFactory func(spec Specification, w, h int32, scale float32) bridge.Factory
}

// NewPlugin is the preferred method of initialisation for the Plugin type
func NewPlugin(spec Specification) *Plugin {
	plg := &Plugin{
		spec:       spec,
		newFactory: newFactory,
	}
	return plg
}

func newFactory(spec Specification, w, h int32, scale float32) bridge.Factory {
	switch spec.Backend {
	case BackendWebGPU:
		return webgpu.NewFactory(w, h, scale, webgpu.Options{
			MinFrameInterval:  spec.MinFrameInterval,
			ActiveFrameBudget: spec.ActiveFrameBudget,
		})
	}
	return sdlgl.NewFactory(spec.Renderer, w, h, scale, sdlgl.Options{
		MinFrameInterval:  spec.MinFrameInterval,
		ActiveFrameBudget: spec.ActiveFrameBudget,
	})
}

// CreateSurface creates the offscreen surface and its export texture,
// returning an identifier for the new surface. The scale argument is the
// device pixel ratio of the host window, with values at or below zero
// treated as 1.0
func (plg *Plugin) CreateSurface(w int32, h int32, scale float32) (int64, error) {
	if w <= 0 || h <= 0 {
		return -1, curated.Errorf(BadDimensions, w, h)
	}
	if scale <= 0 {
		scale = 1.0
	}

	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory != nil {
		return -1, curated.Errorf(SurfaceExists, plg.crit.surfaceID)
	}

	fct := plg.newFactory(plg.spec, w, h, scale)
	if fct == nil || !fct.IsValid() {
		if fct != nil {
			fct.Destroy()
		}
		return -1, curated.Errorf(CreateFailed, plg.spec.Backend)
	}

	if plg.crit.frameReady != nil {
		fct.SetFrameCallback(plg.crit.frameReady)
	}
	if plg.crit.keepAlive != nil {
		fct.SetKeepAliveCallback(plg.crit.keepAlive)
	}

	plg.nextID++
	plg.crit.surfaceID = plg.nextID
	plg.crit.factory = fct

	return plg.crit.surfaceID, nil
}

// ResizeSurface resizes the live surface. An unchanged size is a no-op and
// counts as success. Returns false if there is no live surface or the
// resize failed, in which case the previous size remains in effect
func (plg *Plugin) ResizeSurface(w int32, h int32) bool {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory == nil {
		logger.Log("mapsurface", "resize: no surface")
		return false
	}

	return plg.crit.factory.SetSurfaceSize(w, h)
}

// DestroySurface destroys the live surface and its export texture. A no-op
// if there is no live surface
func (plg *Plugin) DestroySurface() {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory == nil {
		return
	}

	plg.crit.factory.Destroy()
	plg.crit.factory = nil
}

// ExportHandle returns the current handle to the export texture, or nil if
// there is no live surface. The handle is queried fresh on every call and
// must never be cached by the host: resize and destroy both invalidate it
func (plg *Plugin) ExportHandle() bridge.Handle {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory == nil {
		return nil
	}
	return plg.crit.factory.ExportHandle()
}

// SetFrameReadyCallback registers the function called when a new frame is
// available in the export texture. The registration survives surface
// recreation
func (plg *Plugin) SetFrameReadyCallback(f func()) {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	plg.crit.frameReady = f
	if plg.crit.factory != nil {
		plg.crit.factory.SetFrameCallback(f)
	}
}

// SetKeepAliveCallback registers the hook called while the active-frame
// budget is positive. The registration survives surface recreation
func (plg *Plugin) SetKeepAliveCallback(f func()) {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	plg.crit.keepAlive = f
	if plg.crit.factory != nil {
		plg.crit.factory.SetKeepAliveCallback(f)
	}
}

// SetPresentAvailable gates presentation, typically tied to host window
// visibility. While unavailable no frames are copied and no notifications
// are made
func (plg *Plugin) SetPresentAvailable(available bool) {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory != nil {
		plg.crit.factory.SetPresentAvailable(available)
	}
}

// DrawContext returns the rendering context for the engine's render thread,
// or nil if there is no live surface
func (plg *Plugin) DrawContext() bridge.Context {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory == nil {
		return nil
	}
	return plg.crit.factory.DrawContext()
}

// UploadContext returns the rendering context for the engine's resource
// upload thread, or nil if there is no live surface
func (plg *Plugin) UploadContext() bridge.Context {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	if plg.crit.factory == nil {
		return nil
	}
	return plg.crit.factory.UploadContext()
}

// IsValid returns true if there is a live, usable surface
func (plg *Plugin) IsValid() bool {
	plg.crit.section.Lock()
	defer plg.crit.section.Unlock()

	return plg.crit.factory != nil && plg.crit.factory.IsValid()
}
