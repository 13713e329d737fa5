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

// Package sdlgl is the readback backend of the bridge. The engine renders
// with OpenGL into an offscreen framebuffer owned by a hidden SDL window.
// On present, the finished frame is read back to system memory, recomposed
// into the layout of the export texture and uploaded to a streaming SDL
// texture owned by the host's renderer.
//
// OpenGL has no notion of sharing a texture with another API, so the copy
// through system memory is the price of this backend. What it buys is
// ubiquity: it works on any driver that can produce a 3.2 core profile
// context.
//
// Two OpenGL contexts are created against the hidden window. They share
// object namespaces, so a texture uploaded through the upload context is
// visible to the draw context.
package sdlgl
