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

// Package test contains helper functions to make testing easier. In
// particular the ExpectEquality() function which compares like-typed values
// and "fails" the test if they do not match.
//
// The Expect functions mark the test as having failed but allow the test to
// continue. The Demand functions stop the test immediately. Demand is useful
// when the tested value is used in further tests and so must be correct.
package test
