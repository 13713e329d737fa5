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
	"testing"

	"github.com/jharlow/mapsurface/test"
)

func TestFailedConstructionIsSafe(t *testing.T) {
	// no host renderer. construction fails but every entry point must
	// still be callable without crashing
	fct := NewFactory(nil, 800, 600, 1.0, Options{})
	test.ExpectedFailure(t, fct.IsValid())

	draw := fct.DrawContext()
	draw.MakeCurrent()
	draw.DoneCurrent()

	upload := fct.UploadContext()
	upload.MakeCurrent()
	upload.DoneCurrent()

	test.ExpectedFailure(t, fct.SetSurfaceSize(1024, 768))
	test.ExpectEquality(t, draw.RendererName(), "")

	fct.Destroy()
}

func TestSaveCurrentWithoutRecord(t *testing.T) {
	// nothing has been made current through the bridge so the restore
	// function has nothing to do. it must still be safe to call
	fct := NewFactory(nil, 800, 600, 1.0, Options{})
	restore := fct.SaveCurrent()
	restore()
}

func TestReadbackSourceTracksBinding(t *testing.T) {
	fct := &Factory{}
	fct.target.fbo = 7
	fct.draw = &context{fct: fct, isDraw: true}

	// nothing bound yet. fall back to the bridge's own render target
	test.ExpectEquality(t, fct.readbackSource(), uint32(7))

	// the engine composites its final image in its own framebuffer. the
	// copy must read from there, not from the render target
	fct.draw.bound = 42
	test.ExpectEquality(t, fct.readbackSource(), uint32(42))
}
