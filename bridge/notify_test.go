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
	"testing"
	"time"

	"github.com/jharlow/mapsurface/bridge"
	"github.com/jharlow/mapsurface/test"
)

func TestActiveFrameGuarantee(t *testing.T) {
	// an interval long enough that the throttle would drop everything. only
	// the active-frame budget can force a notification through
	n := bridge.NewNotifier(time.Hour, 3)

	notified := 0
	keptAlive := 0
	n.SetFrameCallback(func() { notified++ })
	n.SetKeepAliveCallback(func() { keptAlive++ })

	// every present within the budget notifies, regardless of interval
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectEquality(t, notified, 3)
	test.ExpectEquality(t, keptAlive, 3)

	// budget exhausted. the throttle is in charge again
	test.ExpectedFailure(t, n.FramePresented())
	test.ExpectEquality(t, notified, 3)
	test.ExpectEquality(t, keptAlive, 3)

	// resetting the budget forces notification once more
	n.ResetBudget()
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectEquality(t, notified, 4)
	test.ExpectEquality(t, keptAlive, 4)
}

func TestThrottle(t *testing.T) {
	const interval = 50 * time.Millisecond

	n := bridge.NewNotifier(interval, 1)

	notified := 0
	n.SetFrameCallback(func() { notified++ })

	// drain the budget
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectEquality(t, notified, 1)

	// an immediate second present is inside the minimum interval
	test.ExpectedFailure(t, n.FramePresented())
	test.ExpectEquality(t, notified, 1)

	// once the interval has passed, presents get through again
	time.Sleep(interval + 10*time.Millisecond)
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectEquality(t, notified, 2)
}

func TestThrottleRate(t *testing.T) {
	const interval = 50 * time.Millisecond
	const window = 250 * time.Millisecond

	n := bridge.NewNotifier(interval, 1)
	notified := 0
	n.SetFrameCallback(func() { notified++ })

	// present as fast as we can for the duration of the window. the number
	// of notifications must be bounded by the window divided by the
	// interval, plus one for the notification at the leading edge
	end := time.Now().Add(window)
	for time.Now().Before(end) {
		n.FramePresented()
		time.Sleep(time.Millisecond)
	}

	if max := int(window/interval) + 1; notified > max {
		t.Errorf("%d notifications in %v window. maximum is %d", notified, window, max)
	}
	if notified == 0 {
		t.Errorf("no notifications at all in %v window", window)
	}
}

func TestInFlightDrop(t *testing.T) {
	n := bridge.NewNotifier(time.Millisecond, 10)

	blocking := make(chan bool)
	release := make(chan bool)
	n.SetFrameCallback(func() {
		blocking <- true
		<-release
	})

	result := make(chan bool)
	go func() {
		result <- n.FramePresented()
	}()

	// wait for the notification to be in flight. a present arriving now is
	// dropped even though the budget would force it
	<-blocking
	test.ExpectedFailure(t, n.FramePresented())

	release <- true
	test.ExpectedSuccess(t, <-result)
}

func TestAvailabilityGate(t *testing.T) {
	n := bridge.NewNotifier(time.Millisecond, 10)

	notified := 0
	n.SetFrameCallback(func() { notified++ })

	n.SetAvailable(false)
	test.ExpectedFailure(t, n.FramePresented())
	test.ExpectedFailure(t, n.FramePresented())
	test.ExpectEquality(t, notified, 0)

	n.SetAvailable(true)
	test.ExpectedSuccess(t, n.FramePresented())
	test.ExpectEquality(t, notified, 1)
}
