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
	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/logger"
)

// GLFramebuffer is the engine-side render target type for this backend.
// Engine framebuffers passed to SetFramebuffer() must implement it
type GLFramebuffer interface {
	bridge.Framebuffer
	FramebufferID() uint32
}

// context implements bridge.Context for the OpenGL readback backend. the
// factory hands out two instances, one for the render thread and one for
// the upload thread. they differ only in which GL context they bind and in
// the isDraw flag
type context struct {
	fct    *Factory
	glc    sdl.GLContext
	isDraw bool

	// the framebuffer object draw calls are currently directed at. render
	// thread state, draw context only
	bound uint32

	// stencil state has to be tracked because the reference value and the
	// comparison function are set through separate contract calls but a
	// single GL call
	stencil struct {
		fn  uint32
		ref int32
	}
}

// Init implements the bridge.Context interface
func (ctx *context) Init(api bridge.APIVersion) error {
	if api != bridge.OpenGL {
		return curated.Errorf("sdlgl: unsupported api: %v", api)
	}
	if !ctx.fct.IsValid() {
		return curated.Errorf("sdlgl: factory is not valid")
	}

	ctx.stencil.fn = gl.ALWAYS

	if !ctx.isDraw {
		return nil
	}

	w, h := ctx.fct.co.Dimensions()

	gl.Disable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.STENCIL_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.FrontFace(gl.CCW)
	gl.CullFace(gl.BACK)

	// the engine relies on scissoring being enabled with a full-surface
	// region. tile rendering goes subtly wrong without it
	gl.Enable(gl.SCISSOR_TEST)
	gl.Viewport(0, 0, w, h)
	gl.Scissor(0, 0, w, h)

	return nil
}

// GetAPIVersion implements the bridge.Context interface
func (ctx *context) GetAPIVersion() bridge.APIVersion {
	return bridge.OpenGL
}

// MakeCurrent implements the bridge.Context interface
func (ctx *context) MakeCurrent() {
	// a construction-failed factory has no window. IsValid() covers both
	// that and destruction
	if !ctx.fct.IsValid() {
		return
	}

	if err := ctx.fct.window.GLMakeCurrent(ctx.glc); err != nil {
		logger.Logf(logTag, "make current: %v", err)
		return
	}
	ctx.fct.current = ctx.glc

	if ctx.isDraw {
		// the hidden window's default framebuffer is never rendered to.
		// draw calls go to the offscreen target from the very first frame
		ctx.bound = ctx.fct.target.fbo
		gl.BindFramebuffer(gl.FRAMEBUFFER, ctx.bound)
	}
}

// DoneCurrent implements the bridge.Context interface
func (ctx *context) DoneCurrent() {
	if !ctx.fct.IsValid() {
		return
	}
	if ctx.isDraw {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	if ctx.fct.current == ctx.glc {
		ctx.fct.current = nil
	}
}

// BeginRendering implements the bridge.Context interface
func (ctx *context) BeginRendering() bool {
	return ctx.fct.IsValid()
}

// EndRendering implements the bridge.Context interface
func (ctx *context) EndRendering() {
}

// Present implements the bridge.Context interface
func (ctx *context) Present() {
	if !ctx.isDraw || !ctx.fct.IsValid() {
		return
	}
	if !ctx.fct.notifier.Available() {
		return
	}

	// the host is only notified if the frame actually made it into the
	// export texture. a failed copy leaves the previous frame on display
	if ctx.fct.copyToExport() {
		ctx.fct.notifier.FramePresented()
	}
}

// SetFramebuffer implements the bridge.Context interface
func (ctx *context) SetFramebuffer(fb bridge.Framebuffer) {
	if !ctx.isDraw {
		return
	}

	if fb == nil {
		ctx.bound = ctx.fct.target.fbo
	} else if glfb, ok := fb.(GLFramebuffer); ok {
		ctx.bound = glfb.FramebufferID()
	} else {
		logger.Logf(logTag, "set framebuffer: not a GL framebuffer: %s", fb.Label())
		return
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, ctx.bound)
}

// ForgetFramebuffer implements the bridge.Context interface
func (ctx *context) ForgetFramebuffer(fb bridge.Framebuffer) {
	if !ctx.isDraw {
		return
	}

	if glfb, ok := fb.(GLFramebuffer); ok && glfb.FramebufferID() == ctx.bound {
		ctx.bound = ctx.fct.target.fbo
		gl.BindFramebuffer(gl.FRAMEBUFFER, ctx.bound)
	}
}

// ApplyFramebuffer implements the bridge.Context interface.
//
// Strictly a no-op for this backend. The target selected by
// SetFramebuffer() is already bound. Binding anything else here, including
// the so-called default framebuffer, redirects the engine's subsequent draw
// calls away from the selected target and the affected layers simply vanish
// from the frame
func (ctx *context) ApplyFramebuffer(label string) {
}

// Resize implements the bridge.Context interface
func (ctx *context) Resize(w int32, h int32) {
	ctx.fct.SetSurfaceSize(w, h)
}

// SetClearColor implements the bridge.Context interface
func (ctx *context) SetClearColor(c bridge.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	if ctx.isDraw {
		ctx.fct.clearColor = c
	}
}

// Clear implements the bridge.Context interface
func (ctx *context) Clear(bits bridge.ClearBits) {
	var mask uint32
	if bits&bridge.ClearColorBuffer == bridge.ClearColorBuffer {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if bits&bridge.ClearDepthBuffer == bridge.ClearDepthBuffer {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if bits&bridge.ClearStencilBuffer == bridge.ClearStencilBuffer {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(mask)
}

// Flush implements the bridge.Context interface
func (ctx *context) Flush() {
	gl.Flush()
}

// SetViewport implements the bridge.Context interface
func (ctx *context) SetViewport(x int32, y int32, w int32, h int32) {
	gl.Viewport(x, y, w, h)

	// scissor follows viewport. the engine assumes the two agree
	gl.Scissor(x, y, w, h)

	if ctx.isDraw {
		ctx.fct.co.RecordRendered(w, h)
	}
}

// SetScissor implements the bridge.Context interface
func (ctx *context) SetScissor(x int32, y int32, w int32, h int32) {
	gl.Scissor(x, y, w, h)
}

// SetDepthTestEnabled implements the bridge.Context interface
func (ctx *context) SetDepthTestEnabled(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

// SetDepthTestFunction implements the bridge.Context interface
func (ctx *context) SetDepthTestFunction(f bridge.TestFunction) {
	gl.DepthFunc(glTestFunction(f))
}

// SetStencilTestEnabled implements the bridge.Context interface
func (ctx *context) SetStencilTestEnabled(enabled bool) {
	if enabled {
		gl.Enable(gl.STENCIL_TEST)
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}
}

// SetStencilFunction implements the bridge.Context interface
func (ctx *context) SetStencilFunction(face bridge.StencilFace, f bridge.TestFunction) {
	ctx.stencil.fn = glTestFunction(f)
	gl.StencilFuncSeparate(glStencilFace(face), ctx.stencil.fn, ctx.stencil.ref, 0xff)
}

// SetStencilActions implements the bridge.Context interface
func (ctx *context) SetStencilActions(face bridge.StencilFace, sfail bridge.StencilAction, dpfail bridge.StencilAction, pass bridge.StencilAction) {
	gl.StencilOpSeparate(glStencilFace(face),
		glStencilAction(sfail), glStencilAction(dpfail), glStencilAction(pass))
}

// SetStencilReferenceValue implements the bridge.Context interface
func (ctx *context) SetStencilReferenceValue(ref uint32) {
	ctx.stencil.ref = int32(ref)
	gl.StencilFuncSeparate(gl.FRONT_AND_BACK, ctx.stencil.fn, ctx.stencil.ref, 0xff)
}

// SetCullingEnabled implements the bridge.Context interface
func (ctx *context) SetCullingEnabled(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

// PushDebugLabel implements the bridge.Context interface. A no-op for this
// backend. Debug groups need the KHR_debug extension which is not in the
// 3.2 core profile
func (ctx *context) PushDebugLabel(label string) {
}

// PopDebugLabel implements the bridge.Context interface
func (ctx *context) PopDebugLabel() {
}

// RendererName implements the bridge.Context interface
func (ctx *context) RendererName() string {
	return ctx.fct.queryString(gl.RENDERER)
}

// RendererVersion implements the bridge.Context interface
func (ctx *context) RendererVersion() string {
	return ctx.fct.queryString(gl.VERSION)
}

// queryString reads a GL string constant. the bridge's record of which of
// its contexts is current is saved and restored around the query
func (fct *Factory) queryString(name uint32) string {
	if !fct.IsValid() {
		return ""
	}

	prev := fct.current

	if prev != fct.drawGLC {
		if err := fct.window.GLMakeCurrent(fct.drawGLC); err != nil {
			logger.Logf(logTag, "query string: %v", err)
			return ""
		}
		fct.current = fct.drawGLC
		defer func() {
			if prev != nil {
				if err := fct.window.GLMakeCurrent(prev); err == nil {
					fct.current = prev
				}
			}
		}()
	}

	return gl.GoStr(gl.GetString(name))
}

func glTestFunction(f bridge.TestFunction) uint32 {
	switch f {
	case bridge.TestNever:
		return gl.NEVER
	case bridge.TestLess:
		return gl.LESS
	case bridge.TestEqual:
		return gl.EQUAL
	case bridge.TestLessEqual:
		return gl.LEQUAL
	case bridge.TestGreater:
		return gl.GREATER
	case bridge.TestNotEqual:
		return gl.NOTEQUAL
	case bridge.TestGreaterEqual:
		return gl.GEQUAL
	}
	return gl.ALWAYS
}

func glStencilFace(f bridge.StencilFace) uint32 {
	switch f {
	case bridge.StencilFront:
		return gl.FRONT
	case bridge.StencilBack:
		return gl.BACK
	}
	return gl.FRONT_AND_BACK
}

func glStencilAction(a bridge.StencilAction) uint32 {
	switch a {
	case bridge.StencilZero:
		return gl.ZERO
	case bridge.StencilReplace:
		return gl.REPLACE
	case bridge.StencilIncrement:
		return gl.INCR
	case bridge.StencilIncrementWrap:
		return gl.INCR_WRAP
	case bridge.StencilDecrement:
		return gl.DECR
	case bridge.StencilDecrementWrap:
		return gl.DECR_WRAP
	case bridge.StencilInvert:
		return gl.INVERT
	}
	return gl.KEEP
}
