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
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// Backend selects which graphics backend surfaces are created with
type Backend int

// List of valid Backend values
const (
	// BackendOpenGL is the readback backend. The engine renders with
	// OpenGL and frames are copied through system memory into a streaming
	// SDL texture owned by the host's renderer. Works everywhere
	BackendOpenGL Backend = iota

	// BackendWebGPU is the zero-copy backend. The engine renders through
	// the wgpu hardware abstraction layer and the render target itself is
	// handed to the host
	BackendWebGPU
)

func (b Backend) String() string {
	switch b {
	case BackendOpenGL:
		return "OpenGL"
	case BackendWebGPU:
		return "WebGPU"
	}
	return "unknown"
}

// Specification collects the host-supplied parameters of the Plugin. The
// zero value is usable with BackendWebGPU. BackendOpenGL additionally needs
// the Renderer field
type Specification struct {
	Backend Backend

	// the host's renderer. required by BackendOpenGL, which creates the
	// export texture against it. ignored by BackendWebGPU
	Renderer *sdl.Renderer

	// minimum time between frame notifications. zero selects
	// bridge.DefaultMinInterval
	MinFrameInterval time.Duration

	// number of presents for which notification is forced after surface
	// creation and after every resize. zero selects
	// bridge.DefaultActiveFrames
	ActiveFrameBudget int
}
