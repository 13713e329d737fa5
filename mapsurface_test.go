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
	"testing"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/test"
)

// stubFactory implements bridge.Factory without any GPU behind it. the
// export handle changes on every resize, which is the property the handle
// tests care about
type stubFactory struct {
	valid     bool
	destroyed bool

	width  int32
	height int32

	// incremented every resize. the handle is derived from it
	generation int

	frameReady func()
	keepAlive  func()
}

func (fct *stubFactory) DrawContext() bridge.Context   { return nil }
func (fct *stubFactory) UploadContext() bridge.Context { return nil }

func (fct *stubFactory) IsValid() bool {
	return fct.valid && !fct.destroyed
}

func (fct *stubFactory) SetSurfaceSize(w, h int32) bool {
	if !fct.IsValid() || w <= 0 || h <= 0 {
		return false
	}
	if w == fct.width && h == fct.height {
		return true
	}
	fct.width = w
	fct.height = h
	fct.generation++
	return true
}

func (fct *stubFactory) ExportHandle() bridge.Handle {
	if !fct.IsValid() {
		return nil
	}
	return fct.generation
}

func (fct *stubFactory) SetFrameCallback(f func())     { fct.frameReady = f }
func (fct *stubFactory) SetKeepAliveCallback(f func()) { fct.keepAlive = f }
func (fct *stubFactory) SetPresentAvailable(bool)      {}

func (fct *stubFactory) Destroy() {
	fct.destroyed = true
}

func newTestPlugin(valid bool) (*Plugin, *[]*stubFactory) {
	created := &[]*stubFactory{}
	plg := NewPlugin(Specification{})
	plg.newFactory = func(_ Specification, w, h int32, _ float32) bridge.Factory {
		fct := &stubFactory{valid: valid, width: w, height: h}
		*created = append(*created, fct)
		return fct
	}
	return plg, created
}

func TestSurfaceLifecycle(t *testing.T) {
	plg, created := newTestPlugin(true)

	test.ExpectedFailure(t, plg.IsValid())

	id, err := plg.CreateSurface(800, 600, 1.0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, id, 1)
	test.ExpectedSuccess(t, plg.IsValid())

	// only one live surface at a time
	_, err = plg.CreateSurface(100, 100, 1.0)
	test.ExpectedSuccess(t, curated.Is(err, SurfaceExists))

	plg.DestroySurface()
	test.ExpectedFailure(t, plg.IsValid())
	test.ExpectedSuccess(t, (*created)[0].destroyed)

	// surface identifiers are never reused
	id, err = plg.CreateSurface(640, 480, 2.0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, id, 2)
}

func TestCreateSurfaceFailure(t *testing.T) {
	plg, created := newTestPlugin(false)

	_, err := plg.CreateSurface(800, 600, 1.0)
	test.ExpectedSuccess(t, curated.Is(err, CreateFailed))
	test.ExpectedFailure(t, plg.IsValid())

	// a factory that fails to construct is still destroyed so that any
	// partial resources are released
	test.DemandEquality(t, len(*created), 1)
	test.ExpectedSuccess(t, (*created)[0].destroyed)

	// the failed creation does not block a later attempt
	_, err = plg.CreateSurface(800, 600, 1.0)
	test.ExpectedSuccess(t, curated.Is(err, CreateFailed))
}

func TestBadDimensions(t *testing.T) {
	plg, _ := newTestPlugin(true)

	_, err := plg.CreateSurface(0, 600, 1.0)
	test.ExpectedSuccess(t, curated.Is(err, BadDimensions))

	_, err = plg.CreateSurface(800, -1, 1.0)
	test.ExpectedSuccess(t, curated.Is(err, BadDimensions))
}

func TestStaleHandle(t *testing.T) {
	plg, _ := newTestPlugin(true)

	// no surface, no handle
	test.ExpectedSuccess(t, plg.ExportHandle() == nil)

	_, err := plg.CreateSurface(800, 600, 1.0)
	test.DemandSuccess(t, err)

	before := plg.ExportHandle()
	test.ExpectedFailure(t, before == nil)

	// an unchanged size does not invalidate the handle
	test.ExpectedSuccess(t, plg.ResizeSurface(800, 600))
	if plg.ExportHandle() != before {
		t.Errorf("export handle changed on a no-op resize")
	}

	// a real resize does
	test.ExpectedSuccess(t, plg.ResizeSurface(1200, 900))
	after := plg.ExportHandle()
	if before == after {
		t.Errorf("export handle survived a resize")
	}

	plg.DestroySurface()
	test.ExpectedSuccess(t, plg.ExportHandle() == nil)
}

func TestResizeWithoutSurface(t *testing.T) {
	plg, _ := newTestPlugin(true)
	test.ExpectedFailure(t, plg.ResizeSurface(800, 600))
}

func TestCallbacksSurviveRecreation(t *testing.T) {
	plg, created := newTestPlugin(true)

	frames := 0
	plg.SetFrameReadyCallback(func() { frames++ })
	plg.SetKeepAliveCallback(func() {})

	// callbacks registered before creation are applied to the new factory
	_, err := plg.CreateSurface(800, 600, 1.0)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(*created), 1)
	test.ExpectedSuccess(t, (*created)[0].frameReady != nil)
	test.ExpectedSuccess(t, (*created)[0].keepAlive != nil)

	// and to any replacement factory
	plg.DestroySurface()
	_, err = plg.CreateSurface(800, 600, 1.0)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(*created), 2)
	test.ExpectedSuccess(t, (*created)[1].frameReady != nil)
}
