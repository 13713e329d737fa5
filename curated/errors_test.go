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

package curated_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jharlow/mapsurface/curated"
	"github.com/jharlow/mapsurface/test"
)

const testPattern = "test: %s"

func TestIs(t *testing.T) {
	e := curated.Errorf(testPattern, "foo")
	test.ExpectedSuccess(t, curated.IsAny(e))
	test.ExpectedSuccess(t, curated.Is(e, testPattern))
	test.ExpectedFailure(t, curated.Is(e, "some other pattern: %s"))

	// plain errors are not curated
	f := fmt.Errorf(testPattern, "foo")
	test.ExpectedFailure(t, curated.IsAny(f))
	test.ExpectedFailure(t, curated.Is(f, testPattern))
}

func TestHas(t *testing.T) {
	e := curated.Errorf(testPattern, "foo")
	f := curated.Errorf("wrapping: %v", e)

	// Is() only looks at the outermost error but Has() walks the chain
	test.ExpectedFailure(t, curated.Is(f, testPattern))
	test.ExpectedSuccess(t, curated.Has(f, testPattern))
	test.ExpectedSuccess(t, curated.Has(f, "wrapping: %v"))
}

func TestNormalisation(t *testing.T) {
	// adjacent duplicate message parts are removed
	e := curated.Errorf("error: %v", curated.Errorf("error: %s", "foo"))
	test.ExpectEquality(t, e.Error(), "error: foo")
}

func TestUnwrap(t *testing.T) {
	e := curated.Errorf(testPattern, "foo")
	f := curated.Errorf("wrapping: %v", e)
	test.ExpectedSuccess(t, errors.Is(f, e))

	// matching is by pattern, not by formatted value
	g := curated.Errorf(testPattern, "bar")
	test.ExpectedSuccess(t, errors.Is(f, g))

	// the chain is walked in one direction only
	test.ExpectedFailure(t, errors.Is(e, f))

	// plain errors never match a curated target
	test.ExpectedFailure(t, errors.Is(fmt.Errorf("test: foo"), e))
}
