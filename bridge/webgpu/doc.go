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

// Package webgpu is the zero-copy backend of the bridge. The engine renders
// through the wgpu hardware abstraction layer into an offscreen colour
// texture and that same texture is handed to the host as the export handle.
// There is no readback and no recompose step: present is a submit, a wait
// for the device to drain and a notification.
//
// Unlike the OpenGL backend there is no thread-bound current context and no
// bind-to-draw state machine. Draw calls are recorded into a command
// encoder and a render pass is begun explicitly, which is why this backend
// does its real work in ApplyFramebuffer() where the readback backend does
// nothing at all.
package webgpu
