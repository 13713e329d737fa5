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
	"sync"
	"testing"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/test"
)

// no GPU driver is registered in the test process so construction always
// fails. that is the point: every entry point must still be callable

func TestFailedConstructionIsSafe(t *testing.T) {
	fct := NewFactory(800, 600, 1.0, Options{})
	test.ExpectedFailure(t, fct.IsValid())

	draw := fct.DrawContext()
	draw.MakeCurrent()
	draw.ApplyFramebuffer("layer")
	draw.Clear(bridge.ClearColorBuffer | bridge.ClearDepthBuffer)
	draw.SetViewport(0, 0, 800, 600)
	draw.SetScissor(0, 0, 800, 600)
	draw.SetFramebuffer(nil)
	draw.ForgetFramebuffer(nil)
	draw.Present()
	draw.Flush()
	draw.DoneCurrent()

	test.ExpectedFailure(t, fct.SetSurfaceSize(1024, 768))
	if fct.ExportHandle() != nil {
		t.Errorf("export handle expected to be nil for an invalid factory")
	}

	fct.Destroy()
}

func TestRecordingSharesOneLock(t *testing.T) {
	// the context's recording state and the coordinator's dimensions are
	// guarded by the same critical section. interleaving them from two
	// goroutines must neither race nor deadlock
	fct := NewFactory(800, 600, 1.0, Options{})
	draw := fct.DrawContext()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			draw.Clear(bridge.ClearColorBuffer)
			draw.SetViewport(0, 0, 800, 600)
			draw.Present()
		}
	}()

	for i := 0; i < 100; i++ {
		fct.ExportHandle()
		fct.SetSurfaceSize(1024, 768)
	}

	wg.Wait()
	fct.Destroy()
}
