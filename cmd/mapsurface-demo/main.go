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

// mapsurface-demo is a small host application for eyeballing the bridge: a
// stand-in render loop paints a colour-cycling frame through the rendering
// contract and the window shows whatever lands in the export texture. It
// exercises creation, presentation with throttling, live resizing and
// destruction, exactly as an embedding host would.
package main

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/jharlow/mapsurface"
	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/limiter"
	"github.com/jharlow/mapsurface/logger"
)

const (
	winWidth  = 800
	winHeight = 600
)

func main() {
	err := run()

	// whatever happened, the log is the best clue as to why
	logger.Write(os.Stderr)

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}

func run() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return err
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("mapsurface demo",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		winWidth, winHeight,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	plg := mapsurface.NewPlugin(mapsurface.Specification{
		Backend:  mapsurface.BackendOpenGL,
		Renderer: renderer,
	})

	// the frame callback runs on the render goroutine. it only raises a
	// flag for the host loop to act on
	var frameReady atomic.Bool
	plg.SetFrameReadyCallback(func() {
		frameReady.Store(true)
	})

	if _, err := plg.CreateSurface(winWidth, winHeight, 1.0); err != nil {
		return err
	}
	defer plg.DestroySurface()

	// current surface size, packed for the render goroutine. a real engine
	// learns of resizes through its own machinery
	var surfaceSize atomic.Int64
	surfaceSize.Store(packSize(winWidth, winHeight))

	quit := make(chan bool)
	go renderLoop(plg, &surfaceSize, quit)

	for {
		switch ev := sdl.PollEvent().(type) {
		case *sdl.QuitEvent:
			close(quit)
			return nil

		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				if plg.ResizeSurface(ev.Data1, ev.Data2) {
					surfaceSize.Store(packSize(ev.Data1, ev.Data2))
				}
			}
		}

		if frameReady.CompareAndSwap(true, false) {
			renderer.SetDrawColor(0, 0, 0, 255)
			renderer.Clear()

			// the handle is fetched fresh every frame. holding on to it
			// across a resize would leave us presenting a destroyed texture
			if handle := plg.ExportHandle(); handle != nil {
				renderer.Copy(handle.(*sdl.Texture), nil, nil)
			}

			renderer.Present()
		}

		sdl.Delay(1)
	}
}

func packSize(w, h int32) int64 {
	return int64(w)<<32 | int64(uint32(h))
}

func unpackSize(p int64) (int32, int32) {
	return int32(p >> 32), int32(uint32(p))
}

// renderLoop stands in for the map engine's render thread. it drives the
// full contract: make current, init, begin/end rendering and present
func renderLoop(plg *mapsurface.Plugin, surfaceSize *atomic.Int64, quit chan bool) {
	// OpenGL contexts are bound to the thread that makes them current
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx := plg.DrawContext()
	if ctx == nil {
		return
	}

	ctx.MakeCurrent()
	if err := ctx.Init(bridge.OpenGL); err != nil {
		logger.Logf("demo", "render loop: %v", err)
		return
	}

	lim := limiter.NewFPSLimiter(60)

	frame := 0
	for {
		select {
		case <-quit:
			ctx.DoneCurrent()
			return
		default:
		}

		lim.Wait()

		if !ctx.BeginRendering() {
			continue
		}

		w, h := unpackSize(surfaceSize.Load())
		ctx.SetViewport(0, 0, w, h)

		// a slow colour cycle so frame delivery is visible to the eye
		t := float64(frame) / 120
		ctx.SetClearColor(bridge.Color{
			R: float32(0.5 + 0.5*math.Sin(t)),
			G: float32(0.5 + 0.5*math.Sin(t+2)),
			B: float32(0.5 + 0.5*math.Sin(t+4)),
			A: 1.0,
		})
		ctx.Clear(bridge.ClearColorBuffer | bridge.ClearDepthBuffer)

		ctx.EndRendering()
		ctx.Present()

		frame++
	}
}
