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
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/logger"
)

// GPUFramebuffer is the engine-side render target type for this backend.
// Engine framebuffers passed to SetFramebuffer() must implement it
type GPUFramebuffer interface {
	bridge.Framebuffer
	ColorView() hal.TextureView
	DepthStencilView() hal.TextureView
}

// context implements bridge.Context for the WebGPU backend. the upload
// context records nothing: resource uploads go through the queue directly
// and none of the render state applies to it
type context struct {
	fct    *Factory
	isDraw bool

	// the command encoder for the frame being recorded. created lazily and
	// consumed by Present() or Flush()
	enc      hal.CommandEncoder
	encoding bool

	pass     hal.RenderPassEncoder
	passOpen bool

	// the render target selected by the engine. nil means the bridge's
	// offscreen target
	boundFB bridge.Framebuffer

	clearColor   gputypes.Color
	pendingClear bridge.ClearBits

	viewport [4]int32
	scissor  [4]int32

	// depth, stencil and culling are baked into the pipelines the engine
	// creates for this API. the values are recorded to honour the contract
	// but there is no global state to poke
	state struct {
		depthTest   bool
		depthFn     bridge.TestFunction
		stencilTest bool
		stencilRef  uint32
		culling     bool
	}
}

func newContext(fct *Factory, isDraw bool) *context {
	return &context{
		fct:    fct,
		isDraw: isDraw,
	}
}

// Init implements the bridge.Context interface
func (ctx *context) Init(api bridge.APIVersion) error {
	if api != bridge.WebGPU {
		return curated.Errorf("webgpu: unsupported api: %v", api)
	}
	if !ctx.fct.IsValid() {
		return curated.Errorf("webgpu: factory is not valid")
	}

	w, h := ctx.fct.co.Dimensions()
	ctx.viewport = [4]int32{0, 0, w, h}
	ctx.scissor = [4]int32{0, 0, w, h}

	return nil
}

// GetAPIVersion implements the bridge.Context interface
func (ctx *context) GetAPIVersion() bridge.APIVersion {
	return bridge.WebGPU
}

// MakeCurrent implements the bridge.Context interface. There is no
// thread-bound current context in this API
func (ctx *context) MakeCurrent() {
}

// DoneCurrent implements the bridge.Context interface
func (ctx *context) DoneCurrent() {
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
		// the recorded frame can never be shown. discard it rather than
		// letting the encoder grow across frames
		ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
			ctx.abandonFrame()
			return nil
		})
		return
	}

	presented := false
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		presented = ctx.submitFrame(true)
		return nil
	})

	if presented {
		ctx.fct.notifier.FramePresented()
	}
}

// SetFramebuffer implements the bridge.Context interface
func (ctx *context) SetFramebuffer(fb bridge.Framebuffer) {
	if !ctx.isDraw {
		return
	}

	if fb != nil {
		if _, ok := fb.(GPUFramebuffer); !ok {
			logger.Logf(logTag, "set framebuffer: not a webgpu framebuffer: %s", fb.Label())
			return
		}
	}

	// the change takes effect at the next ApplyFramebuffer()
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.endPass()
		ctx.boundFB = fb
		return nil
	})
}

// ForgetFramebuffer implements the bridge.Context interface
func (ctx *context) ForgetFramebuffer(fb bridge.Framebuffer) {
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		if ctx.boundFB == fb {
			ctx.endPass()
			ctx.boundFB = nil
		}
		return nil
	})
}

// ApplyFramebuffer implements the bridge.Context interface. This is where a
// render pass against the selected target actually begins. Encoder-style
// APIs have no bind-to-draw state machine, so unlike the readback backend
// this must not be a no-op.
//
// The pass begins inside the coordinator's critical section: the attachment
// views must not be reallocated by a resize between here and the submit
func (ctx *context) ApplyFramebuffer(label string) {
	if !ctx.isDraw || !ctx.fct.IsValid() {
		return
	}
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.beginPass(label)
		return nil
	})
}

// Resize implements the bridge.Context interface
func (ctx *context) Resize(w int32, h int32) {
	ctx.fct.SetSurfaceSize(w, h)
}

// SetClearColor implements the bridge.Context interface
func (ctx *context) SetClearColor(c bridge.Color) {
	ctx.clearColor = gputypes.Color{
		R: float64(c.R),
		G: float64(c.G),
		B: float64(c.B),
		A: float64(c.A),
	}
}

// Clear implements the bridge.Context interface. Clearing in this API is a
// load operation on the next render pass, not an immediate command
func (ctx *context) Clear(bits bridge.ClearBits) {
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.pendingClear |= bits

		// if a pass is already open the clear has to happen now, which
		// means cutting the pass and starting another with clear load ops
		if ctx.passOpen {
			ctx.endPass()
			ctx.beginPass("clear")
		}
		return nil
	})
}

// Flush implements the bridge.Context interface. The recorded commands are
// submitted without waiting for completion
func (ctx *context) Flush() {
	if !ctx.isDraw || !ctx.fct.IsValid() {
		return
	}
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.submitFrame(false)
		return nil
	})
}

// SetViewport implements the bridge.Context interface
func (ctx *context) SetViewport(x int32, y int32, w int32, h int32) {
	if ctx.isDraw {
		ctx.fct.co.RecordRendered(w, h)
	}

	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.viewport = [4]int32{x, y, w, h}

		// scissor follows viewport. the engine assumes the two agree
		ctx.scissor = [4]int32{x, y, w, h}

		ctx.applyClip()
		return nil
	})
}

// SetScissor implements the bridge.Context interface
func (ctx *context) SetScissor(x int32, y int32, w int32, h int32) {
	ctx.fct.co.WithFrame(func(_ bridge.Frame) error {
		ctx.scissor = [4]int32{x, y, w, h}
		ctx.applyClip()
		return nil
	})
}

// SetDepthTestEnabled implements the bridge.Context interface
func (ctx *context) SetDepthTestEnabled(enabled bool) {
	ctx.state.depthTest = enabled
}

// SetDepthTestFunction implements the bridge.Context interface
func (ctx *context) SetDepthTestFunction(f bridge.TestFunction) {
	ctx.state.depthFn = f
}

// SetStencilTestEnabled implements the bridge.Context interface
func (ctx *context) SetStencilTestEnabled(enabled bool) {
	ctx.state.stencilTest = enabled
}

// SetStencilFunction implements the bridge.Context interface
func (ctx *context) SetStencilFunction(face bridge.StencilFace, f bridge.TestFunction) {
}

// SetStencilActions implements the bridge.Context interface
func (ctx *context) SetStencilActions(face bridge.StencilFace, sfail bridge.StencilAction, dpfail bridge.StencilAction, pass bridge.StencilAction) {
}

// SetStencilReferenceValue implements the bridge.Context interface
func (ctx *context) SetStencilReferenceValue(ref uint32) {
	ctx.state.stencilRef = ref
}

// SetCullingEnabled implements the bridge.Context interface
func (ctx *context) SetCullingEnabled(enabled bool) {
	ctx.state.culling = enabled
}

// PushDebugLabel implements the bridge.Context interface
func (ctx *context) PushDebugLabel(label string) {
}

// PopDebugLabel implements the bridge.Context interface
func (ctx *context) PopDebugLabel() {
}

// RendererName implements the bridge.Context interface
func (ctx *context) RendererName() string {
	return ctx.fct.adapterName
}

// RendererVersion implements the bridge.Context interface
func (ctx *context) RendererVersion() string {
	return "webgpu/vulkan"
}

// setClip is called by the coordinator during a resize, with its critical
// section held. no pass can be open at that point so the values simply wait
// for the next beginPass()
func (ctx *context) setClip(w int32, h int32) {
	ctx.viewport = [4]int32{0, 0, w, h}
	ctx.scissor = [4]int32{0, 0, w, h}
}

// endPass closes the open render pass, if there is one. must be called
// inside the coordinator's critical section
func (ctx *context) endPass() {
	if ctx.passOpen {
		ctx.pass.End()
		ctx.passOpen = false
		ctx.pass = nil
	}
}

func (ctx *context) ensureEncoding() error {
	if ctx.enc == nil {
		enc, err := ctx.fct.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
			Label: "mapsurface_frame",
		})
		if err != nil {
			return curated.Errorf("webgpu: %v", err)
		}
		ctx.enc = enc
	}

	if !ctx.encoding {
		if err := ctx.enc.BeginEncoding("mapsurface_frame"); err != nil {
			ctx.enc = nil
			return curated.Errorf("webgpu: %v", err)
		}
		ctx.encoding = true
	}

	return nil
}

// beginPass starts a render pass against the selected target. must be called
// inside the coordinator's critical section: the attachment views read here
// are the ones a resize destroys
func (ctx *context) beginPass(label string) {
	ctx.endPass()

	if err := ctx.ensureEncoding(); err != nil {
		logger.Logf(logTag, "begin pass: %v", err)
		return
	}

	colourView := ctx.fct.targets.colourView
	depthView := ctx.fct.targets.depthView
	if fb, ok := ctx.boundFB.(GPUFramebuffer); ok {
		colourView = fb.ColorView()
		depthView = fb.DepthStencilView()
	}
	if colourView == nil {
		logger.Log(logTag, "begin pass: no colour view")
		return
	}

	colLoad := gputypes.LoadOpLoad
	if ctx.pendingClear&bridge.ClearColorBuffer == bridge.ClearColorBuffer {
		colLoad = gputypes.LoadOpClear
	}
	depthLoad := gputypes.LoadOpLoad
	if ctx.pendingClear&bridge.ClearDepthBuffer == bridge.ClearDepthBuffer {
		depthLoad = gputypes.LoadOpClear
	}
	stencilLoad := gputypes.LoadOpLoad
	if ctx.pendingClear&bridge.ClearStencilBuffer == bridge.ClearStencilBuffer {
		stencilLoad = gputypes.LoadOpClear
	}
	ctx.pendingClear = 0

	desc := &hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       colourView,
			LoadOp:     colLoad,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: ctx.clearColor,
		}},
	}
	if depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depthView,
			DepthLoadOp:       depthLoad,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1.0,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		}
	}

	ctx.pass = ctx.enc.BeginRenderPass(desc)
	ctx.passOpen = ctx.pass != nil
	ctx.applyClip()
}

func (ctx *context) applyClip() {
	if !ctx.passOpen {
		return
	}

	v := ctx.viewport
	ctx.pass.SetViewport(float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3]), 0, 1)

	s := ctx.scissor
	ctx.pass.SetScissorRect(uint32(s[0]), uint32(s[1]), uint32(s[2]), uint32(s[3]))
}

// submitFrame closes the pass and the encoder and submits the command
// buffer. With wait set, the function does not return until the GPU has
// finished: the host must never be told about a frame that is still being
// written. Returns true if a frame was submitted (and, if waiting, has
// completed).
//
// Must be called inside the coordinator's critical section.
func (ctx *context) submitFrame(wait bool) bool {
	ctx.endPass()

	if !ctx.encoding || ctx.enc == nil {
		return false
	}

	enc := ctx.enc
	ctx.enc = nil
	ctx.encoding = false

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		logger.Logf(logTag, "end encoding: %v", err)
		return false
	}
	defer ctx.fct.device.FreeCommandBuffer(cmdBuf)

	if !wait {
		if _, err := ctx.fct.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
			logger.Logf(logTag, "submit: %v", err)
		}
		return false
	}

	if _, err := ctx.fct.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		logger.Logf(logTag, "submit: %v", err)
		return false
	}

	// the host must never hear about a frame the GPU is still writing.
	// the device serves this bridge alone so idle means the frame is done
	if err := ctx.fct.device.WaitIdle(); err != nil {
		logger.Logf(logTag, "wait idle: %v", err)
		return false
	}

	return true
}

// abandonFrame discards everything recorded since the last submit. must be
// called inside the coordinator's critical section: the resize path invokes
// it before the attachment textures are destroyed
func (ctx *context) abandonFrame() {
	ctx.endPass()
	if ctx.encoding && ctx.enc != nil {
		ctx.enc.DiscardEncoding()
	}
	ctx.enc = nil
	ctx.encoding = false
}
