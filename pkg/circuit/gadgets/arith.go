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

// FullAdder emits one full-adder gate group: sum = a^b^cin and
// cout = (a&b) ^ (cin & (a^b)).
func FullAdder(c *circuit.Circuit, a, b, cin circuit.Wire) (circuit.Wire, circuit.Wire) {
	axb := Xor(c, a, b)
	sum := Xor(c, axb, cin)
	cout := Xor(c, And(c, a, b), And(c, cin, axb))
	//
	return sum, cout
}

// Add emits a ripple-carry adder over two bundles of equal width, with the
// carry wire threaded from bit 0 upwards.  Returns the sum bundle (same
// width, wrap-around semantics) and the final carry-out wire.
func Add(c *circuit.Circuit, a, b circuit.Bundle) (circuit.Bundle, circuit.Wire) {
	return addWithCarry(c, a, b, circuit.Zero)
}

// Sub computes a-b by two's complement: a + ~b + 1, realised as a ripple
// adder over the inverted subtrahend with an initial carry-in of 1.  The
// returned carry-out is 1 iff no borrow occurred, i.e. iff a >= b unsigned.
func Sub(c *circuit.Circuit, a, b circuit.Bundle) (circuit.Bundle, circuit.Wire) {
	return addWithCarry(c, a, NotBits(c, b), circuit.One)
}

func addWithCarry(c *circuit.Circuit, a, b circuit.Bundle, cin circuit.Wire) (circuit.Bundle, circuit.Wire) {
	sameWidth(a, b)
	//
	sum := make(circuit.Bundle, len(a))
	carry := cin
	//
	for i := range a {
		sum[i], carry = FullAdder(c, a[i], b[i], carry)
	}
	//
	return sum, carry
}

// LessUnsigned produces a wire which is 1 iff a < b as unsigned integers,
// derived from the subtractor's borrow.
func LessUnsigned(c *circuit.Circuit, a, b circuit.Bundle) circuit.Wire {
	_, noBorrow := Sub(c, a, b)
	return Not(c, noBorrow)
}

// LessSigned produces a wire which is 1 iff a < b as two's-complement
// integers.  When the sign bits differ the sign of a decides; otherwise the
// unsigned comparison does.
func LessSigned(c *circuit.Circuit, a, b circuit.Bundle) circuit.Wire {
	var (
		sa   = a[len(a)-1]
		sb   = b[len(b)-1]
		diff = Xor(c, sa, sb)
		ult  = LessUnsigned(c, a, b)
	)
	//
	return Mux(c, diff, sa, ult)
}

// ZeroExtend widens a bundle to the given width using the constant 0 wire.
// No gates are emitted; this is pure wire rearrangement.
func ZeroExtend(a circuit.Bundle, width uint) circuit.Bundle {
	out := circuit.ZeroBundle(width)
	copy(out, a)
	//
	return out
}

// SignExtend widens a bundle to the given width by replicating its most
// significant wire.  No gates are emitted.
func SignExtend(a circuit.Bundle, width uint) circuit.Bundle {
	out := make(circuit.Bundle, width)
	copy(out, a)
	//
	for i := uint(len(a)); i < width; i++ {
		out[i] = a[len(a)-1]
	}
	//
	return out
}

// Truncate narrows a bundle to its low width wires.
func Truncate(a circuit.Bundle, width uint) circuit.Bundle {
	return a[:width]
}
