// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package circuit

import (
	"github.com/bits-and-blooms/bitset"
)

// Bundle is a fixed-length ordered sequence of wires representing one
// multi-bit value, least-significant bit first.  Bundles are the unit every
// instruction handler consumes and produces.
type Bundle []Wire

// ConstBundle builds a bundle of the given width whose wires are the constant
// wires encoding value, least-significant bit first.  No gates are emitted.
func ConstBundle(value uint64, width uint) Bundle {
	b := make(Bundle, width)
	//
	for i := uint(0); i < width; i++ {
		if value&(1<<i) != 0 {
			b[i] = One
		} else {
			b[i] = Zero
		}
	}
	//
	return b
}

// ZeroBundle builds a bundle of the given width made entirely of the constant
// 0 wire.
func ZeroBundle(width uint) Bundle {
	return ConstBundle(0, width)
}

// Width returns the number of bits in this bundle.
func (b Bundle) Width() uint {
	return uint(len(b))
}

// Constant reports whether every wire of this bundle is one of the two
// constant wires and, if so, the value the bundle statically encodes.  Used
// for compile-time bounds checks on statically known addresses.
func (b Bundle) Constant() (uint64, bool) {
	var value uint64
	//
	for i, w := range b {
		switch w {
		case Zero:
			// zero bit
		case One:
			value |= 1 << i
		default:
			return 0, false
		}
	}
	//
	return value, true
}

// ValueIn extracts the concrete value this bundle carries under a given
// assignment of wire values, least-significant bit first.
func (b Bundle) ValueIn(values *bitset.BitSet) uint64 {
	var value uint64
	//
	for i, w := range b {
		if values.Test(uint(w)) {
			value |= 1 << i
		}
	}
	//
	return value
}
