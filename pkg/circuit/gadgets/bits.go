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

// Package gadgets provides the gate-level building blocks from which every
// compiled instruction is assembled: boolean combiners, a ripple-carry
// adder/subtractor, comparators, a log-depth shifter and the multiplexer via
// which all conditional effects are expressed.  Each gadget is a pure
// function from wire bundles to a new wire bundle, realised by appending a
// fixed, width-parameterised gate pattern to the circuit.
package gadgets

import (
	"fmt"

	"github.com/consensys/go-zkriscv/pkg/circuit"
)

// Not derives negation from the XOR basis.
func Not(c *circuit.Circuit, a circuit.Wire) circuit.Wire {
	return c.EmitGate(circuit.XOR, a, circuit.One)
}

// And emits a single conjunction gate.
func And(c *circuit.Circuit, a, b circuit.Wire) circuit.Wire {
	return c.EmitGate(circuit.AND, a, b)
}

// Xor emits a single exclusive-disjunction gate.
func Xor(c *circuit.Circuit, a, b circuit.Wire) circuit.Wire {
	return c.EmitGate(circuit.XOR, a, b)
}

// Or derives disjunction from the AND/XOR basis: a|b = (a^b)^(a&b).
func Or(c *circuit.Circuit, a, b circuit.Wire) circuit.Wire {
	return Xor(c, Xor(c, a, b), And(c, a, b))
}

// Mux selects t when cond is 1 and f otherwise: f ^ (cond & (t^f)).  This is
// the mechanism by which every conditional effect (branch outcomes, x0 write
// suppression, memory write enables) is expressed, since a circuit has no
// runtime branching.
func Mux(c *circuit.Circuit, cond, t, f circuit.Wire) circuit.Wire {
	return Xor(c, f, And(c, cond, Xor(c, t, f)))
}

// Select applies Mux bit-wise over two bundles of equal width.
func Select(c *circuit.Circuit, cond circuit.Wire, t, f circuit.Bundle) circuit.Bundle {
	sameWidth(t, f)
	//
	out := make(circuit.Bundle, len(t))
	for i := range t {
		out[i] = Mux(c, cond, t[i], f[i])
	}
	//
	return out
}

// AndBits combines two bundles bit-wise with AND.
func AndBits(c *circuit.Circuit, a, b circuit.Bundle) circuit.Bundle {
	sameWidth(a, b)
	//
	out := make(circuit.Bundle, len(a))
	for i := range a {
		out[i] = And(c, a[i], b[i])
	}
	//
	return out
}

// OrBits combines two bundles bit-wise with OR.
func OrBits(c *circuit.Circuit, a, b circuit.Bundle) circuit.Bundle {
	sameWidth(a, b)
	//
	out := make(circuit.Bundle, len(a))
	for i := range a {
		out[i] = Or(c, a[i], b[i])
	}
	//
	return out
}

// XorBits combines two bundles bit-wise with XOR.
func XorBits(c *circuit.Circuit, a, b circuit.Bundle) circuit.Bundle {
	sameWidth(a, b)
	//
	out := make(circuit.Bundle, len(a))
	for i := range a {
		out[i] = Xor(c, a[i], b[i])
	}
	//
	return out
}

// NotBits negates a bundle bit-wise.
func NotBits(c *circuit.Circuit, a circuit.Bundle) circuit.Bundle {
	out := make(circuit.Bundle, len(a))
	for i := range a {
		out[i] = Not(c, a[i])
	}
	//
	return out
}

// OrReduce folds a bundle down to a single wire which is 1 iff any bit is 1.
func OrReduce(c *circuit.Circuit, a circuit.Bundle) circuit.Wire {
	if len(a) == 0 {
		return circuit.Zero
	}
	//
	acc := a[0]
	for _, w := range a[1:] {
		acc = Or(c, acc, w)
	}
	//
	return acc
}

// IsZero produces a wire which is 1 iff every bit of the bundle is 0.
func IsZero(c *circuit.Circuit, a circuit.Bundle) circuit.Wire {
	return Not(c, OrReduce(c, a))
}

// Equal produces a wire which is 1 iff the two bundles carry identical values.
func Equal(c *circuit.Circuit, a, b circuit.Bundle) circuit.Wire {
	return IsZero(c, XorBits(c, a, b))
}

func sameWidth(a, b circuit.Bundle) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("bundle width mismatch (%d vs %d)", len(a), len(b)))
	}
}
