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
package gadgets

import (
	"github.com/consensys/go-zkriscv/pkg/circuit"
)

// Shifters are built as log-depth multiplexer trees: each bit k of the shift
// amount selects, for every output bit, between "shifted by 2^k" and "pass
// through".  This costs O(bits * log bits) gates rather than one unrolled
// circuit per possible amount.  Shift amounts beyond the bundle width wrap
// per RISC-V semantics, hence only the low log2(width) amount bits are
// consulted.

// ShiftLeft shifts val left by the amount encoded in the amount bundle,
// filling with the constant 0 wire.
func ShiftLeft(c *circuit.Circuit, val, amount circuit.Bundle) circuit.Bundle {
	return muxShift(c, val, amount, func(v circuit.Bundle, k uint) circuit.Bundle {
		out := circuit.ZeroBundle(v.Width())
		copy(out[k:], v)
		//
		return out
	})
}

// ShiftRightLogical shifts val right by the given amount, filling with the
// constant 0 wire.
func ShiftRightLogical(c *circuit.Circuit, val, amount circuit.Bundle) circuit.Bundle {
	return muxShift(c, val, amount, func(v circuit.Bundle, k uint) circuit.Bundle {
		out := circuit.ZeroBundle(v.Width())
		copy(out, v[k:])
		//
		return out
	})
}

// ShiftRightArith shifts val right by the given amount, filling with copies
// of the sign wire.
func ShiftRightArith(c *circuit.Circuit, val, amount circuit.Bundle) circuit.Bundle {
	sign := val[len(val)-1]
	//
	return muxShift(c, val, amount, func(v circuit.Bundle, k uint) circuit.Bundle {
		out := make(circuit.Bundle, v.Width())
		copy(out, v[k:])
		//
		for i := v.Width() - k; i < v.Width(); i++ {
			out[i] = sign
		}
		//
		return out
	})
}

// muxShift threads the value through one selection stage per consulted
// amount bit.  The fixed "shift by 2^k" candidates are pure wire
// rearrangements; only the selection stages emit gates.
func muxShift(c *circuit.Circuit, val, amount circuit.Bundle,
	by func(circuit.Bundle, uint) circuit.Bundle) circuit.Bundle {
	//
	stages := log2(val.Width())
	//
	for k := uint(0); k < stages && k < amount.Width(); k++ {
		shifted := by(val, 1<<k)
		val = Select(c, amount[k], shifted, val)
	}
	//
	return val
}

func log2(width uint) uint {
	var n uint
	for w := uint(1); w < width; w <<= 1 {
		n++
	}
	//
	return n
}
