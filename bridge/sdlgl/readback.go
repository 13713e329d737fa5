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

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/logger"
)

// copyToExport reads the completed frame out of the offscreen target and
// uploads it to the export texture. Returns true if the export texture now
// holds the new frame.
//
// Runs inside the coordinator's critical section so that a resize cannot
// swap the storage out from underneath the copy. Render thread only.
func (fct *Factory) copyToExport() bool {
	ok := false

	fct.co.WithFrame(func(f bridge.Frame) error {
		if fct.export.texture == nil {
			return nil
		}

		// the engine renders at the dimensions it most recently declared,
		// which during a resize is not the committed surface size. reading
		// more than was rendered would pick up stale rows. reading beyond
		// the storage is not possible at all, hence the clamp
		rw := f.RenderedWidth
		rh := f.RenderedHeight
		if rw <= 0 || rh <= 0 {
			rw = f.Width
			rh = f.Height
		}
		if rw > f.Width {
			rw = f.Width
		}
		if rh > f.Height {
			rh = f.Height
		}

		// everything the engine has issued must have completed before the
		// pixels are read. Finish, not Flush
		gl.Finish()

		// the finished image lives in whatever framebuffer the engine last
		// bound. for a multi-pass engine that is not necessarily the
		// bridge's own render target
		gl.BindFramebuffer(gl.FRAMEBUFFER, fct.readbackSource())

		need := int(rw) * int(rh) * 4
		if cap(fct.export.readBuf) < need {
			fct.export.readBuf = make([]byte, need)
		}
		buf := fct.export.readBuf[:need]

		gl.GetError()
		gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
		gl.ReadPixels(0, 0, rw, rh, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(buf))
		if e := gl.GetError(); e != gl.NO_ERROR {
			logger.Logf(logTag, "readback: %#04x", e)
			return nil
		}

		recompose(fct.export.staging, f.Width, f.Height, buf, rw, rh, fct.clearColor)

		if err := fct.export.texture.Update(nil, fct.export.staging, int(f.Width)*4); err != nil {
			logger.Logf(logTag, "export update: %v", err)
			return nil
		}

		// push the texture update into the destination API's command stream
		// before the host hears about the frame
		_ = fct.renderer.Flush()

		ok = true
		return nil
	})

	return ok
}

// readbackSource is the framebuffer the copy reads from: the draw context's
// tracked binding, falling back to the bridge's render target if the engine
// has not bound anything
func (fct *Factory) readbackSource() uint32 {
	if fct.draw != nil && fct.draw.bound != 0 {
		return fct.draw.bound
	}
	return fct.target.fbo
}

// recompose converts a bottom-up RGBA frame into the top-down BGRA layout of
// the export texture.
//
// When the source dimensions do not match the destination, the destination
// is filled with the border colour first and the source is copied into the
// top-left corner. A partially rendered frame therefore appears as a smaller
// map image with a clean border, never as garbage pixels.
func recompose(dst []byte, dw int32, dh int32, src []byte, sw int32, sh int32, border bridge.Color) {
	if dw <= 0 || dh <= 0 {
		return
	}

	partial := sw != dw || sh != dh
	if partial {
		fill(dst, border)
	}

	cw := sw
	if cw > dw {
		cw = dw
	}
	ch := sh
	if ch > dh {
		ch = dh
	}

	for y := int32(0); y < ch; y++ {
		// OpenGL rows run bottom to top
		srcRow := src[(sh-1-y)*sw*4:]
		dstRow := dst[y*dw*4:]
		for x := int32(0); x < cw; x++ {
			dstRow[x*4+0] = srcRow[x*4+2]
			dstRow[x*4+1] = srcRow[x*4+1]
			dstRow[x*4+2] = srcRow[x*4+0]
			dstRow[x*4+3] = srcRow[x*4+3]
		}
	}
}

// fill the destination with the border colour in BGRA order
func fill(dst []byte, border bridge.Color) {
	b := byte(border.B * 255)
	g := byte(border.G * 255)
	r := byte(border.R * 255)
	a := byte(border.A * 255)
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i+0] = b
		dst[i+1] = g
		dst[i+2] = r
		dst[i+3] = a
	}
}
