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

import (
	"sync"

	"github.com/jharlow/mapsurface/logger"
)

// ResizeTarget is implemented by a backend so that the Coordinator can
// sequence a surface resize against it. Every method is called with the
// Coordinator's critical section held, so implementations do not need their
// own locking against Present
type ResizeTarget interface {
	// SaveCurrent records whatever rendering context is current on the
	// calling thread and returns a function that restores it. The thread
	// calling resize is very often not the render thread, so its context
	// must survive the resize
	SaveCurrent() (restore func())

	// MakeRenderCurrent binds the context that owns the offscreen storage
	MakeRenderCurrent() error

	// ReallocateStorage replaces the pixel storage of the offscreen target
	// with storage of the new size. On error the previous storage must
	// still be usable
	ReallocateStorage(w, h int32) error

	// ReattachStorage re-attaches the reallocated storage to the render
	// target and verifies its completeness. Reallocation can orphan the
	// attachment even when the object IDs are unchanged. An error here is
	// logged but does not abort the resize
	ReattachStorage() error

	// UpdateClipRegion sets viewport and scissor to cover the new size
	UpdateClipRegion(w, h int32)

	// RecreateExport destroys the old export texture and creates one of the
	// new size. Any handle previously returned for the old texture is
	// invalid from this point
	RecreateExport(w, h int32) error
}

// Frame is a snapshot of surface dimensions taken inside the Coordinator's
// critical section
type Frame struct {
	// the committed dimensions of the surface and export texture
	Width  int32
	Height int32

	// the dimensions the engine most recently declared with SetViewport().
	// during a resize these lag the committed dimensions by a frame or two
	RenderedWidth  int32
	RenderedHeight int32
}

// Coordinator owns the critical section shared by frame presentation and
// surface resizing. While a resize is reallocating storage no frame can be
// presented, and while a frame is being copied out no resize can begin.
type Coordinator struct {
	crit struct {
		section sync.Mutex

		width  int32
		height int32
		scale  float32

		renderedWidth  int32
		renderedHeight int32
	}

	target   ResizeTarget
	notifier *Notifier
}

// NewCoordinator is the preferred method of initialisation for the
// Coordinator type. The initial dimensions are taken to be committed and
// rendered
func NewCoordinator(target ResizeTarget, notifier *Notifier, w, h int32, scale float32) *Coordinator {
	co := &Coordinator{
		target:   target,
		notifier: notifier,
	}
	co.crit.width = w
	co.crit.height = h
	co.crit.scale = scale
	co.crit.renderedWidth = w
	co.crit.renderedHeight = h
	return co
}

// Dimensions returns the committed surface dimensions
func (co *Coordinator) Dimensions() (int32, int32) {
	co.crit.section.Lock()
	defer co.crit.section.Unlock()
	return co.crit.width, co.crit.height
}

// Scale returns the device pixel ratio the surface was created with
func (co *Coordinator) Scale() float32 {
	co.crit.section.Lock()
	defer co.crit.section.Unlock()
	return co.crit.scale
}

// RecordRendered notes the dimensions the engine is actually rendering at.
// Called from the draw context's SetViewport()
func (co *Coordinator) RecordRendered(w, h int32) {
	co.crit.section.Lock()
	defer co.crit.section.Unlock()
	co.crit.renderedWidth = w
	co.crit.renderedHeight = h
}

// WithFrame runs f inside the critical section with a snapshot of the
// current dimensions. Present uses this to copy the frame out without a
// resize intervening
func (co *Coordinator) WithFrame(f func(Frame) error) error {
	co.crit.section.Lock()
	defer co.crit.section.Unlock()
	return f(Frame{
		Width:          co.crit.width,
		Height:         co.crit.height,
		RenderedWidth:  co.crit.renderedWidth,
		RenderedHeight: co.crit.renderedHeight,
	})
}

// Resize the surface to the new dimensions. An unchanged size is a no-op and
// counts as success.
//
// On success the committed dimensions are updated, every previously returned
// export handle is invalid and the active-frame budget is reset. On failure
// the last successfully committed dimensions remain in effect and the old
// storage continues to serve stale frames
func (co *Coordinator) Resize(w, h int32) bool {
	if w <= 0 || h <= 0 {
		logger.Logf("bridge", "resize: rejecting %dx%d", w, h)
		return false
	}

	co.crit.section.Lock()
	defer co.crit.section.Unlock()

	if w == co.crit.width && h == co.crit.height {
		return true
	}

	restore := co.target.SaveCurrent()

	if err := co.target.MakeRenderCurrent(); err != nil {
		logger.Logf("bridge", "resize: %v", err)
		restore()
		return false
	}

	if err := co.target.ReallocateStorage(w, h); err != nil {
		logger.Logf("bridge", "resize: %v", err)
		restore()
		return false
	}

	// an incomplete render target is logged but the resize carries on. the
	// engine continues to issue draw calls either way and a blank frame is
	// preferable to a dead render thread
	if err := co.target.ReattachStorage(); err != nil {
		logger.Logf("bridge", "resize: %v", err)
	}

	co.target.UpdateClipRegion(w, h)

	restore()

	if err := co.target.RecreateExport(w, h); err != nil {
		logger.Logf("bridge", "resize: %v", err)
		return false
	}

	co.crit.width = w
	co.crit.height = h

	if co.notifier != nil {
		co.notifier.ResetBudget()
	}

	return true
}
