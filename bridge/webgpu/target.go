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

	"github.com/jharlow/mapsurface/curated"
)

// targetSet is the offscreen render target: a colour texture that doubles
// as the export texture, and a depth/stencil texture. Views are created
// separately from the textures so that the reallocate/reattach halves of a
// resize map onto texture creation and view creation respectively.
type targetSet struct {
	colourTex  hal.Texture
	colourView hal.TextureView
	depthTex   hal.Texture
	depthView  hal.TextureView

	width  uint32
	height uint32
}

// reallocate destroys the current textures and creates new ones of the
// given size. views are not created here, see reattach()
func (ts *targetSet) reallocate(device hal.Device, w uint32, h uint32) error {
	ts.destroy(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	// the colour texture is the export texture. TextureBinding is what lets
	// the host sample it and CopySrc allows a host that would rather blit
	colourTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "mapsurface_colour",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return curated.Errorf("webgpu: colour texture: %v", err)
	}
	ts.colourTex = colourTex

	depthTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "mapsurface_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		ts.destroy(device)
		return curated.Errorf("webgpu: depth/stencil texture: %v", err)
	}
	ts.depthTex = depthTex

	ts.width = w
	ts.height = h

	return nil
}

// reattach creates fresh views onto the current textures. the old views, if
// any, refer to destroyed textures and are replaced
func (ts *targetSet) reattach(device hal.Device) error {
	if ts.colourTex == nil || ts.depthTex == nil {
		return curated.Errorf("webgpu: no storage to attach views to")
	}

	if ts.colourView != nil {
		device.DestroyTextureView(ts.colourView)
		ts.colourView = nil
	}
	if ts.depthView != nil {
		device.DestroyTextureView(ts.depthView)
		ts.depthView = nil
	}

	colourView, err := device.CreateTextureView(ts.colourTex, &hal.TextureViewDescriptor{
		Label: "mapsurface_colour_view",
	})
	if err != nil {
		return curated.Errorf("webgpu: colour view: %v", err)
	}
	ts.colourView = colourView

	depthView, err := device.CreateTextureView(ts.depthTex, &hal.TextureViewDescriptor{
		Label: "mapsurface_depth_stencil_view",
	})
	if err != nil {
		return curated.Errorf("webgpu: depth/stencil view: %v", err)
	}
	ts.depthView = depthView

	return nil
}

// destroy releases views before textures
func (ts *targetSet) destroy(device hal.Device) {
	if ts.colourView != nil {
		device.DestroyTextureView(ts.colourView)
		ts.colourView = nil
	}
	if ts.depthView != nil {
		device.DestroyTextureView(ts.depthView)
		ts.depthView = nil
	}
	if ts.colourTex != nil {
		device.DestroyTexture(ts.colourTex)
		ts.colourTex = nil
	}
	if ts.depthTex != nil {
		device.DestroyTexture(ts.depthTex)
		ts.depthTex = nil
	}
	ts.width = 0
	ts.height = 0
}
