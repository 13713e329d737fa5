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
	"sync/atomic"
	"time"
)

// DefaultMinInterval is the default minimum time between two frame
// notifications. Approximately one refresh of a 60Hz display
const DefaultMinInterval = 16 * time.Millisecond

// DefaultActiveFrames is the default number of presented frames for which
// notification is forced and the keep-alive hook is invoked. The budget
// covers engine startup and the frames immediately after a resize, when the
// host must see every frame even if its own vsync has not settled yet
const DefaultActiveFrames = 120

// Notifier decides when the host is told that a new frame is available in
// the export texture.
//
// Two mechanisms limit the notification rate. A minimum interval between
// notifications drops frames that arrive faster than the host can display
// them. A single in-flight flag drops frames that arrive while a previous
// notification is still being delivered. Dropped frames are never queued:
// the export texture already holds the newest image, so a late host misses
// nothing by being told only once.
//
// All methods are safe for concurrent use.
type Notifier struct {
	minInterval time.Duration
	budgetReset int32

	// unix nanoseconds of the most recent notification
	lastNotify atomic.Int64

	// set while a notification is being delivered to the host
	inFlight atomic.Bool

	// remaining presents for which notification is forced
	budget atomic.Int32

	// presentation gate. see SetAvailable()
	available atomic.Bool

	callbacks struct {
		section    sync.Mutex
		frameReady func()
		keepAlive  func()
	}
}

// NewNotifier is the preferred method of initialisation for the Notifier
// type. A zero minInterval or activeFrames selects the package default
func NewNotifier(minInterval time.Duration, activeFrames int) *Notifier {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if activeFrames <= 0 {
		activeFrames = DefaultActiveFrames
	}

	n := &Notifier{
		minInterval: minInterval,
		budgetReset: int32(activeFrames),
	}
	n.budget.Store(n.budgetReset)
	n.available.Store(true)

	return n
}

// SetFrameCallback registers the function called on notification. The
// callback runs on the thread that presented the frame and should hand off
// to the host quickly. Frames presented while the callback is running are
// dropped
func (n *Notifier) SetFrameCallback(f func()) {
	n.callbacks.section.Lock()
	defer n.callbacks.section.Unlock()
	n.callbacks.frameReady = f
}

// SetKeepAliveCallback registers the hook invoked on every present while the
// active-frame budget is positive
func (n *Notifier) SetKeepAliveCallback(f func()) {
	n.callbacks.section.Lock()
	defer n.callbacks.section.Unlock()
	n.callbacks.keepAlive = f
}

// SetAvailable gates notification. While unavailable no notifications are
// made at all
func (n *Notifier) SetAvailable(available bool) {
	n.available.Store(available)
}

// Available returns the current state of the presentation gate
func (n *Notifier) Available() bool {
	return n.available.Load()
}

// ResetBudget restores the active-frame budget to its initial value. Called
// on surface creation and after every resize
func (n *Notifier) ResetBudget() {
	n.budget.Store(n.budgetReset)
}

// FramePresented tells the Notifier that a new frame has completed and is
// visible in the export texture. Returns true if the host was notified and
// false if the frame was dropped by the throttle or the in-flight limit.
//
// While the active-frame budget is positive, the minimum interval is waived
// and the keep-alive hook is invoked. The in-flight limit always applies
func (n *Notifier) FramePresented() bool {
	if !n.available.Load() {
		return false
	}

	forced := false
	for {
		b := n.budget.Load()
		if b <= 0 {
			break
		}
		if n.budget.CompareAndSwap(b, b-1) {
			forced = true
			break
		}
	}

	if forced {
		n.callbacks.section.Lock()
		keepAlive := n.callbacks.keepAlive
		n.callbacks.section.Unlock()
		if keepAlive != nil {
			keepAlive()
		}
	}

	return n.notify(forced)
}

func (n *Notifier) notify(forced bool) bool {
	now := time.Now()

	if !forced && now.UnixNano()-n.lastNotify.Load() < int64(n.minInterval) {
		return false
	}

	// the in-flight flag is cleared when the callback returns. it is not a
	// lock: a frame arriving in the meantime is dropped, not made to wait
	if !n.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer n.inFlight.Store(false)

	n.lastNotify.Store(now.UnixNano())

	n.callbacks.section.Lock()
	frameReady := n.callbacks.frameReady
	n.callbacks.section.Unlock()

	if frameReady != nil {
		frameReady()
	}

	return true
}
