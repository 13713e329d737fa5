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

// Package bridge defines the rendering contract between an embedded map
// engine and the graphics backends that satisfy it.
//
// The engine renders through a Context. A Factory owns the offscreen surface
// the Context renders into, along with the export texture that a host
// compositor samples from. Two Context instances are handed out per factory:
// a draw context for the render thread and an upload context for the
// engine's resource upload thread. The two share GPU resources.
//
// The package also contains the two pieces of machinery shared by every
// backend. The Notifier decides when the host is told about a new frame,
// with a minimum interval between notifications and a single in-flight
// limit. Excess frames are dropped, never queued. The Coordinator owns the
// critical section shared by frame presentation and surface resizing and
// sequences storage reallocation so that a frame is never presented against
// mismatched dimensions.
//
// Errors on the render path do not propagate to the engine. A failed copy or
// resize degrades to a blank or stale frame and is recorded in the central
// logger. The render thread never terminates because of a GPU error.
package bridge
