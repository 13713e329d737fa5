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

package bridge

// APIVersion identifies the graphics API a Context speaks
type APIVersion int

// List of valid APIVersion values
const (
	OpenGL APIVersion = iota
	WebGPU
)

func (v APIVersion) String() string {
	switch v {
	case OpenGL:
		return "OpenGL"
	case WebGPU:
		return "WebGPU"
	}
	return "unknown"
}

// ClearBits selects which aspects of the framebuffer a Clear() call affects.
// Values can be ORed together
type ClearBits uint32

// List of valid ClearBits values
const (
	ClearColorBuffer ClearBits = 1 << iota
	ClearDepthBuffer
	ClearStencilBuffer
)

// TestFunction is the comparison used by depth and stencil testing
type TestFunction int

// List of valid TestFunction values
const (
	TestNever TestFunction = iota
	TestLess
	TestEqual
	TestLessEqual
	TestGreater
	TestNotEqual
	TestGreaterEqual
	TestAlways
)

// StencilFace selects which primitive faces a stencil setting applies to
type StencilFace int

// List of valid StencilFace values
const (
	StencilFront StencilFace = iota
	StencilBack
	StencilFrontAndBack
)

// StencilAction is what happens to a stencil value as fragments pass or fail
// the stencil and depth tests
type StencilAction int

// List of valid StencilAction values
const (
	StencilKeep StencilAction = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilIncrementWrap
	StencilDecrement
	StencilDecrementWrap
	StencilInvert
)

// Color is a normalised RGBA colour
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// Framebuffer is a render target created by the engine, as opposed to the
// bridge's own offscreen target. The concrete type is backend-specific. The
// bridge only needs to tell them apart and to label them
type Framebuffer interface {
	Label() string
}

// Handle is an opaque reference to the export texture of a surface. The
// concrete type is backend-specific. A Handle is invalidated by every resize
// and by the destruction of the surface, so it must be re-queried from the
// factory every time it is used and never cached
type Handle interface{}

// Context is the rendering contract offered to the embedded engine. All
// methods except RendererName() and RendererVersion() must be called from
// the thread the context belongs to.
//
// Errors on the rendering path are absorbed and logged. The only error
// return is from Init() so that the engine can fall back to a different
// backend before rendering begins.
type Context interface {
	// Init prepares baseline render state. Returns an error if the context
	// cannot support the requested API
	Init(api APIVersion) error

	// GetAPIVersion returns the API the context was initialised with
	GetAPIVersion() APIVersion

	// MakeCurrent binds the context to the calling thread. For the draw
	// context this also binds the bridge's offscreen render target, so the
	// engine is never left rendering to a default framebuffer that does not
	// exist
	MakeCurrent()

	// DoneCurrent releases the context from the calling thread
	DoneCurrent()

	// BeginRendering marks the start of a frame. Returns false if the
	// context is no longer usable, in which case the engine must not issue
	// draw calls for this frame
	BeginRendering() bool

	// EndRendering marks the end of a frame's draw calls. Present() may
	// still follow
	EndRendering()

	// Present completes the frame: the finished image is made visible to
	// the host through the export texture and the host is notified, subject
	// to throttling
	Present()

	// SetFramebuffer directs subsequent draw calls to the given render
	// target. A nil Framebuffer selects the bridge's offscreen target
	SetFramebuffer(fb Framebuffer)

	// ForgetFramebuffer tells the context that the engine has destroyed a
	// render target. If it was the bound target, the offscreen target is
	// re-bound
	ForgetFramebuffer(fb Framebuffer)

	// ApplyFramebuffer is called by the engine immediately before draw
	// calls are issued against the target selected with SetFramebuffer().
	// Backends with an encoder-style API begin their render pass here.
	// Backends with bind-style state machines must treat this as a no-op:
	// re-binding anything here would silently redirect the engine's draw
	// calls away from the selected target
	ApplyFramebuffer(label string)

	// Resize delegates to the factory's surface resize
	Resize(w, h int32)

	// SetClearColor sets the colour used by Clear() and by border fills
	// when a partial frame is recomposed
	SetClearColor(c Color)

	// Clear the selected aspects of the bound render target
	Clear(bits ClearBits)

	// Flush submits any buffered work without waiting for completion
	Flush()

	// SetViewport sets the rendered region. The scissor region follows the
	// viewport: the engine assumes the two always agree
	SetViewport(x, y, w, h int32)

	// SetScissor sets the scissor region independently of the viewport
	SetScissor(x, y, w, h int32)

	SetDepthTestEnabled(enabled bool)
	SetDepthTestFunction(f TestFunction)

	SetStencilTestEnabled(enabled bool)
	SetStencilFunction(face StencilFace, f TestFunction)
	SetStencilActions(face StencilFace, sfail StencilAction, dpfail StencilAction, pass StencilAction)
	SetStencilReferenceValue(ref uint32)

	SetCullingEnabled(enabled bool)

	// PushDebugLabel and PopDebugLabel delimit a group of commands for
	// frame debuggers. No-ops where the backend has no debug marker support
	PushDebugLabel(label string)
	PopDebugLabel()

	// RendererName and RendererVersion identify the underlying device and
	// driver. Callable from any thread
	RendererName() string
	RendererVersion() string
}

// Factory owns an offscreen surface, its export texture and the pair of
// contexts the engine renders through
type Factory interface {
	// DrawContext returns the context for the engine's render thread
	DrawContext() Context

	// UploadContext returns the context for the engine's resource upload
	// thread
	UploadContext() Context

	// IsValid returns false if construction failed or the factory has been
	// destroyed. An invalid factory hands out contexts that fail safely
	IsValid() bool

	// SetSurfaceSize resizes the offscreen surface and the export texture.
	// An unchanged size is a no-op and counts as success. On failure the
	// last successfully committed size remains in effect
	SetSurfaceSize(w, h int32) bool

	// ExportHandle returns the current handle to the export texture. The
	// returned Handle is invalidated by resize and destroy
	ExportHandle() Handle

	// SetFrameCallback registers the function called when a new frame is
	// available in the export texture
	SetFrameCallback(f func())

	// SetKeepAliveCallback registers a hook the bridge calls while the
	// active-frame budget is positive, so the engine's render loop is kept
	// awake during startup and immediately after a resize
	SetKeepAliveCallback(f func())

	// SetPresentAvailable gates presentation. While unavailable, Present()
	// still completes the frame but no copy is made and the host is not
	// notified
	SetPresentAvailable(available bool)

	// Destroy marks the contexts invalid and then releases all GPU
	// resources. Safe to call more than once
	Destroy()
}
