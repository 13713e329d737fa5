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

	"github.com/jharlow/mapsurface/curated"
)

// renderTarget is the offscreen framebuffer the engine renders into. An
// RGBA8 colour texture and a combined depth/stencil renderbuffer.
//
// All methods must be called with the draw context current.
type renderTarget struct {
	fbo     uint32
	texture uint32
	rbo     uint32

	width  int32
	height int32
}

func (rt *renderTarget) create(width int32, height int32) error {
	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.GenTextures(1, &rt.texture)
	gl.GenRenderbuffers(1, &rt.rbo)
	rt.reallocate(width, height)
	return rt.reattach()
}

// reallocate the pixel storage for the existing texture and renderbuffer
// objects. the object names do not change
func (rt *renderTarget) reallocate(width int32, height int32) {
	rt.width = width
	rt.height = height

	gl.BindTexture(gl.TEXTURE_2D, rt.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0,
		gl.RGBA, rt.width, rt.height, 0,
		gl.RGBA, gl.UNSIGNED_BYTE,
		nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, rt.width, rt.height)
}

// reattach the storage to the framebuffer and verify completeness.
// reallocation can orphan the attachments even though the object names are
// unchanged, so this must follow every reallocate()
func (rt *renderTarget) reattach() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.texture, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rt.rbo)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return curated.Errorf("sdlgl: framebuffer incomplete: %#04x", status)
	}

	return nil
}

// destroy should be called when the renderTarget is no longer required
func (rt *renderTarget) destroy() {
	gl.DeleteRenderbuffers(1, &rt.rbo)
	gl.DeleteTextures(1, &rt.texture)
	gl.DeleteFramebuffers(1, &rt.fbo)
}
