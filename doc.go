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

// Package mapsurface lets a host application embed a GPU-rendered map
// surface. An embedded vector-map engine renders into an offscreen target
// and the finished frames appear in an export texture that the host's own
// graphics API can sample, with the host notified as new frames arrive.
//
// The Plugin type is the host-facing surface manager. A typical host:
//
//	plg := mapsurface.NewPlugin(mapsurface.Specification{Renderer: renderer})
//	plg.SetFrameReadyCallback(onFrame)
//	id, err := plg.CreateSurface(800, 600, 1.0)
//
// and then, every time it composes a frame of its own:
//
//	if handle := plg.ExportHandle(); handle != nil {
//		renderer.Copy(handle.(*sdl.Texture), nil, nil)
//	}
//
// The handle must be fetched again on every use. Resizing the surface
// destroys and recreates the export texture, so yesterday's handle refers
// to nothing.
//
// The engine side of the arrangement is the bridge package: the Plugin
// hands the engine a bridge.Context for its render thread and another for
// its upload thread.
package mapsurface
