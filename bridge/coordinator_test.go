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

package bridge_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/test"
)

// mockTarget implements bridge.ResizeTarget and records the order in which
// its methods are called
type mockTarget struct {
	sequence []string

	storageW int32
	storageH int32
	exportW  int32
	exportH  int32

	failAlloc    error
	failReattach error
	failExport   error
}

func (m *mockTarget) SaveCurrent() func() {
	m.sequence = append(m.sequence, "save")
	return func() {
		m.sequence = append(m.sequence, "restore")
	}
}

func (m *mockTarget) MakeRenderCurrent() error {
	m.sequence = append(m.sequence, "current")
	return nil
}

func (m *mockTarget) ReallocateStorage(w, h int32) error {
	m.sequence = append(m.sequence, "alloc")
	if m.failAlloc != nil {
		return m.failAlloc
	}
	m.storageW = w
	m.storageH = h
	return nil
}

func (m *mockTarget) ReattachStorage() error {
	m.sequence = append(m.sequence, "reattach")
	return m.failReattach
}

func (m *mockTarget) UpdateClipRegion(w, h int32) {
	m.sequence = append(m.sequence, "clip")
}

func (m *mockTarget) RecreateExport(w, h int32) error {
	m.sequence = append(m.sequence, "export")
	if m.failExport != nil {
		return m.failExport
	}
	m.exportW = w
	m.exportH = h
	return nil
}

func newTestCoordinator(w, h int32) (*bridge.Coordinator, *mockTarget) {
	m := &mockTarget{storageW: w, storageH: h, exportW: w, exportH: h}
	return bridge.NewCoordinator(m, bridge.NewNotifier(0, 0), w, h, 1.0), m
}

func TestResizeSequence(t *testing.T) {
	co, m := newTestCoordinator(800, 600)

	test.ExpectedSuccess(t, co.Resize(1024, 768))

	// the caller's context is restored before the export texture is
	// recreated. the export texture belongs to the destination API and has
	// no use for the render context
	want := []string{"save", "current", "alloc", "reattach", "clip", "restore", "export"}
	test.DemandEquality(t, len(m.sequence), len(want))
	for i := range want {
		test.ExpectEquality(t, m.sequence[i], want[i])
	}

	w, h := co.Dimensions()
	test.ExpectEquality(t, w, 1024)
	test.ExpectEquality(t, h, 768)
	test.ExpectEquality(t, m.exportW, 1024)
	test.ExpectEquality(t, m.exportH, 768)
}

func TestResizeNoop(t *testing.T) {
	co, m := newTestCoordinator(800, 600)

	// resizing to the current size succeeds without touching the target
	test.ExpectedSuccess(t, co.Resize(800, 600))
	test.ExpectEquality(t, len(m.sequence), 0)

	// nonsense dimensions are rejected outright
	test.ExpectedFailure(t, co.Resize(0, 600))
	test.ExpectedFailure(t, co.Resize(800, -1))
	test.ExpectEquality(t, len(m.sequence), 0)
}

func TestResizeFailureKeepsDimensions(t *testing.T) {
	co, m := newTestCoordinator(800, 600)
	m.failAlloc = fmt.Errorf("out of memory")

	test.ExpectedFailure(t, co.Resize(4096, 4096))

	// the last-good dimensions survive and the caller's context was
	// restored despite the failure
	w, h := co.Dimensions()
	test.ExpectEquality(t, w, 800)
	test.ExpectEquality(t, h, 600)
	test.ExpectEquality(t, m.sequence[len(m.sequence)-1], "restore")
	test.ExpectEquality(t, m.exportW, 800)
	test.ExpectEquality(t, m.exportH, 600)
}

func TestReattachFailureContinues(t *testing.T) {
	co, m := newTestCoordinator(800, 600)
	m.failReattach = fmt.Errorf("framebuffer incomplete")

	// an incomplete render target does not abort the resize
	test.ExpectedSuccess(t, co.Resize(1024, 768))

	w, h := co.Dimensions()
	test.ExpectEquality(t, w, 1024)
	test.ExpectEquality(t, h, 768)
}

func TestResizeResetsBudget(t *testing.T) {
	m := &mockTarget{}
	n := bridge.NewNotifier(time.Hour, 1)
	co := bridge.NewCoordinator(m, n, 800, 600, 1.0)

	// drain the budget. with an hour-long interval nothing else notifies
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectedFailure(t, n.FramePresented())

	test.ExpectedSuccess(t, co.Resize(1024, 768))
	test.ExpectedSuccess(t, n.FramePresented())
}

func TestDimensionInvariant(t *testing.T) {
	co, m := newTestCoordinator(800, 600)

	rnd := rand.New(rand.NewSource(1))
	for range 100 {
		w := int32(rnd.Intn(4000) + 1)
		h := int32(rnd.Intn(4000) + 1)
		test.ExpectedSuccess(t, co.Resize(w, h))

		cw, ch := co.Dimensions()
		test.ExpectEquality(t, cw, w)
		test.ExpectEquality(t, ch, h)
		test.ExpectEquality(t, m.exportW, w)
		test.ExpectEquality(t, m.exportH, h)
	}
}

// creation followed by a handful of presents with a resize arriving while
// the present loop is still running. the present must only ever observe
// dimensions that agree with the export texture
func TestResizeMidFlight(t *testing.T) {
	co, m := newTestCoordinator(800, 600)

	var wg sync.WaitGroup
	wg.Add(1)

	presents := 0
	go func() {
		defer wg.Done()
		for range 50 {
			co.WithFrame(func(f bridge.Frame) error {
				if f.Width != m.exportW || f.Height != m.exportH {
					t.Errorf("present saw surface %dx%d but export texture %dx%d",
						f.Width, f.Height, m.exportW, m.exportH)
				}
				presents++
				return nil
			})
			time.Sleep(time.Millisecond)
		}
	}()

	// let a few presents through before resizing
	time.Sleep(10 * time.Millisecond)
	test.ExpectedSuccess(t, co.Resize(1200, 900))

	wg.Wait()
	test.ExpectEquality(t, presents, 50)

	w, h := co.Dimensions()
	test.ExpectEquality(t, w, 1200)
	test.ExpectEquality(t, h, 900)
	test.ExpectEquality(t, m.exportW, 1200)
	test.ExpectEquality(t, m.exportH, 900)
}

func TestRenderedFrameRecord(t *testing.T) {
	co, _ := newTestCoordinator(800, 600)

	// before the engine has reacted to a resize, the rendered record lags
	// the committed dimensions
	test.ExpectedSuccess(t, co.Resize(1024, 768))
	co.WithFrame(func(f bridge.Frame) error {
		test.ExpectEquality(t, f.Width, 1024)
		test.ExpectEquality(t, f.RenderedWidth, 800)
		test.ExpectEquality(t, f.RenderedHeight, 600)
		return nil
	})

	// the engine catches up by declaring a new viewport
	co.RecordRendered(1024, 768)
	co.WithFrame(func(f bridge.Frame) error {
		test.ExpectEquality(t, f.RenderedWidth, 1024)
		test.ExpectEquality(t, f.RenderedHeight, 768)
		return nil
	})
}
