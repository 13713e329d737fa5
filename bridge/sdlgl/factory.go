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

package sdlgl

import (
	"sync/atomic"
	"time"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/logger"
)

// tag to use for log entries from this package
const logTag = "sdlgl"

// Options for factory creation. The zero value selects sensible defaults
type Options struct {
	// minimum time between frame notifications. zero selects
	// bridge.DefaultMinInterval
	MinFrameInterval time.Duration

	// number of presents for which notification is forced. zero selects
	// bridge.DefaultActiveFrames
	ActiveFrameBudget int
}

// Factory implements bridge.Factory for the OpenGL readback backend
type Factory struct {
	// the host's renderer. owns the export texture
	renderer *sdl.Renderer

	// hidden window that owns the OpenGL contexts and the offscreen target
	window    *sdl.Window
	drawGLC   sdl.GLContext
	uploadGLC sdl.GLContext
	glInited  bool

	// the context most recently made current through the bridge. the SDL
	// bindings at this version have no current-context getter so the
	// bridge keeps its own record. written on the context threads and read
	// during resize, when those threads are blocked on the coordinator
	current sdl.GLContext

	target renderTarget

	// the export texture and the staging buffers for the readback path.
	// guarded by the coordinator's critical section
	export struct {
		texture *sdl.Texture
		staging []byte
		readBuf []byte
	}

	co       *bridge.Coordinator
	notifier *bridge.Notifier

	draw   *context
	upload *context

	// the clear colour doubles as the border colour for partial frames.
	// written and read on the render thread only
	clearColor bridge.Color

	valid     atomic.Bool
	destroyed atomic.Bool
}

// NewFactory is the preferred method of initialisation for the Factory type.
//
// Construction failure does not return an error: it returns a factory for
// which IsValid() is false and whose contexts fail safely. The reasons for
// the failure are in the central logger
func NewFactory(renderer *sdl.Renderer, width int32, height int32, scale float32, opts Options) *Factory {
	fct := &Factory{
		renderer: renderer,
	}
	fct.notifier = bridge.NewNotifier(opts.MinFrameInterval, opts.ActiveFrameBudget)
	fct.co = bridge.NewCoordinator(fct, fct.notifier, width, height, scale)
	fct.draw = &context{fct: fct, isDraw: true}
	fct.upload = &context{fct: fct}

	if renderer == nil {
		logger.Log(logTag, "create: no host renderer")
		return fct
	}

	if err := fct.initGL(width, height); err != nil {
		logger.Logf(logTag, "create: %v", err)
		fct.teardown()
		return fct
	}

	if err := fct.createExport(width, height); err != nil {
		logger.Logf(logTag, "create: %v", err)
		fct.teardown()
		return fct
	}

	fct.valid.Store(true)
	logger.Logf(logTag, "created %dx%d surface", width, height)

	return fct
}

func (fct *Factory) initGL(width int32, height int32) error {
	if sdl.WasInit(sdl.INIT_VIDEO) == 0 {
		if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
			return curated.Errorf("sdlgl: %v", err)
		}
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 2)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	var err error

	// the window is never shown. it exists only to give the OpenGL contexts
	// somewhere to live
	fct.window, err = sdl.CreateWindow("mapsurface offscreen",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		32, 32,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}

	fct.drawGLC, err = fct.window.GLCreateContext()
	if err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}

	// the upload context shares its object namespace with the draw context,
	// which is current at this point
	sdl.GLSetAttribute(sdl.GL_SHARE_WITH_CURRENT_CONTEXT, 1)
	fct.uploadGLC, err = fct.window.GLCreateContext()
	if err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}

	if err = fct.window.GLMakeCurrent(fct.drawGLC); err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}
	fct.current = fct.drawGLC

	if err = gl.Init(); err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}
	fct.glInited = true

	fct.draw.glc = fct.drawGLC
	fct.upload.glc = fct.uploadGLC

	return fct.target.create(width, height)
}

func (fct *Factory) createExport(width int32, height int32) error {
	// ARGB8888 matches the BGRA byte order the recompose step produces
	tex, err := fct.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ARGB8888),
		int(sdl.TEXTUREACCESS_STREAMING), width, height)
	if err != nil {
		return curated.Errorf("sdlgl: export texture: %v", err)
	}

	fct.export.texture = tex
	fct.export.staging = make([]byte, int(width)*int(height)*4)

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
// the handle is *sdl.Texture
func (fct *Factory) ExportHandle() bridge.Handle {
	if !fct.IsValid() {
		return nil
	}

	var handle bridge.Handle
	fct.co.WithFrame(func(_ bridge.Frame) error {
		if fct.export.texture != nil {
			handle = fct.export.texture
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

	// the contexts must report themselves unusable before any GPU resource
	// is released. an in-flight render call then fails safely instead of
	// touching freed state
	fct.valid.Store(false)

	fct.teardown()
	logger.Log(logTag, "destroyed")
}

func (fct *Factory) teardown() {
	fct.co.WithFrame(func(_ bridge.Frame) error {
		if fct.export.texture != nil {
			_ = fct.export.texture.Destroy()
			fct.export.texture = nil
		}
		return nil
	})

	if fct.window == nil {
		return
	}

	if fct.glInited {
		if err := fct.window.GLMakeCurrent(fct.drawGLC); err == nil {
			fct.current = fct.drawGLC
			fct.target.destroy()
		}
	}
	fct.current = nil

	if fct.uploadGLC != nil {
		sdl.GLDeleteContext(fct.uploadGLC)
		fct.uploadGLC = nil
	}
	if fct.drawGLC != nil {
		sdl.GLDeleteContext(fct.drawGLC)
		fct.drawGLC = nil
	}

	_ = fct.window.Destroy()
	fct.window = nil
}

// the remaining functions implement the bridge.ResizeTarget interface. they
// are called by the coordinator with its critical section held

// SaveCurrent implements the bridge.ResizeTarget interface
func (fct *Factory) SaveCurrent() func() {
	prev := fct.current

	return func() {
		if prev == nil || fct.window == nil {
			// nothing of the bridge's was current before the resize. SDL
			// cannot make "no context" current through these bindings so
			// the draw context stays current on the resizing thread, which
			// is harmless as long as the render thread is blocked on the
			// coordinator
			return
		}
		if err := fct.window.GLMakeCurrent(prev); err != nil {
			logger.Logf(logTag, "restore context: %v", err)
			return
		}
		fct.current = prev
	}
}

// MakeRenderCurrent implements the bridge.ResizeTarget interface
func (fct *Factory) MakeRenderCurrent() error {
	if fct.window == nil {
		return curated.Errorf("sdlgl: no window")
	}
	if err := fct.window.GLMakeCurrent(fct.drawGLC); err != nil {
		return curated.Errorf("sdlgl: %v", err)
	}
	fct.current = fct.drawGLC
	return nil
}

// ReallocateStorage implements the bridge.ResizeTarget interface
func (fct *Factory) ReallocateStorage(w int32, h int32) error {
	// clear any stale error flag so the check below is meaningful
	gl.GetError()

	fct.target.reallocate(w, h)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return curated.Errorf("sdlgl: storage reallocation: %#04x", e)
	}
	return nil
}

// ReattachStorage implements the bridge.ResizeTarget interface
func (fct *Factory) ReattachStorage() error {
	return fct.target.reattach()
}

// UpdateClipRegion implements the bridge.ResizeTarget interface
func (fct *Factory) UpdateClipRegion(w int32, h int32) {
	gl.Viewport(0, 0, w, h)
	gl.Scissor(0, 0, w, h)
}

// RecreateExport implements the bridge.ResizeTarget interface
func (fct *Factory) RecreateExport(w int32, h int32) error {
	// destroy before create. the destination API will not tolerate two
	// textures of this size being alive at once on low-memory devices and
	// the old contents are worthless after a resize anyway
	if fct.export.texture != nil {
		_ = fct.export.texture.Destroy()
		fct.export.texture = nil
	}
	return fct.createExport(w, h)
}
