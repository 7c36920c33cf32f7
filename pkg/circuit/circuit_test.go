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
	"errors"
	"testing"

	"github.com/bits-and-blooms/bitset"
)

func Test_Circuit_Constants(t *testing.T) {
	c := New(0, 0)
	//
	if c.NumWires() != 2 {
		t.Errorf("fresh circuit has %d wires, expected 2", c.NumWires())
	}
	// Folding over constants never emits gates.
	if w := c.EmitGate(AND, One, One); w != One {
		t.Errorf("1&1 folded to wire %d, expected %d", w, One)
	}
	//
	if w := c.EmitGate(XOR, One, One); w != Zero {
		t.Errorf("1^1 folded to wire %d, expected %d", w, Zero)
	}
	//
	if c.NumGates() != 0 {
		t.Errorf("constant folding emitted %d gates", c.NumGates())
	}
}

func Test_Circuit_Eval(t *testing.T) {
	t.Parallel()
	// Single XOR/AND pair over two inputs (a half adder).
	c := New(0, 0)
	inputs := c.MarkInputs(2)
	sum := c.EmitGate(XOR, inputs[0], inputs[1])
	carry := c.EmitGate(AND, inputs[0], inputs[1])
	c.MarkOutputs([]Wire{sum, carry})
	//
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	//
	for a := uint64(0); a < 2; a++ {
		for b := uint64(0); b < 2; b++ {
			in := bitset.New(2)
			setBit(in, 0, a == 1)
			setBit(in, 1, b == 1)
			//
			values, err := c.Compute(in)
			if err != nil {
				t.Fatal(err)
			}
			//
			outputs := c.Outputs(values)
			if got := outputs.Test(0); got != ((a ^ b) == 1) {
				t.Errorf("sum(%d,%d) = %v", a, b, got)
			}
			//
			if got := outputs.Test(1); got != ((a & b) == 1) {
				t.Errorf("carry(%d,%d) = %v", a, b, got)
			}
		}
	}
}

func Test_Circuit_CapacityExceeded(t *testing.T) {
	t.Parallel()
	//
	c := New(0, 2)
	inputs := c.MarkInputs(2)
	//
	for i := 0; i < 5; i++ {
		c.EmitGate(XOR, inputs[0], inputs[1])
	}
	//
	var capErr *CapacityError
	if err := c.Err(); !errors.As(err, &capErr) {
		t.Fatalf("expected capacity error, got %v", err)
	} else if capErr.Kind != "gates" {
		t.Errorf("expected gate capacity error, got %s", capErr.Kind)
	}
}

func Test_Circuit_Monotonic(t *testing.T) {
	t.Parallel()
	// Appending more gates never shrinks counts.
	c := New(0, 0)
	inputs := c.MarkInputs(4)
	//
	prevWires, prevGates := c.NumWires(), c.NumGates()
	//
	for i := 0; i < 3; i++ {
		c.EmitGate(AND, inputs[i], inputs[i+1])
		//
		if c.NumWires() < prevWires || c.NumGates() < prevGates {
			t.Fatalf("circuit shrank at step %d", i)
		}
		//
		prevWires, prevGates = c.NumWires(), c.NumGates()
	}
}

func Test_Circuit_Acyclic(t *testing.T) {
	t.Parallel()
	//
	c := New(0, 0)
	inputs := c.MarkInputs(3)
	w1 := c.EmitGate(AND, inputs[0], inputs[1])
	w2 := c.EmitGate(XOR, w1, inputs[2])
	c.MarkOutputs([]Wire{w2})
	//
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	//
	for i, g := range c.Gates() {
		if g.Left >= g.Out || g.Right >= g.Out {
			t.Errorf("gate %d reads a wire it has not yet defined", i)
		}
	}
}

func Test_Bundle_Constant(t *testing.T) {
	t.Parallel()
	//
	b := ConstBundle(0xdeadbeef, 32)
	if v, ok := b.Constant(); !ok || v != 0xdeadbeef {
		t.Errorf("constant bundle reports (%x, %v)", v, ok)
	}
	//
	c := New(0, 0)
	inputs := c.MarkInputs(1)
	b[7] = inputs[0]
	//
	if _, ok := b.Constant(); ok {
		t.Errorf("bundle with an input wire reported constant")
	}
}

func Test_Circuit_SerializeRoundtrip(t *testing.T) {
	t.Parallel()
	//
	c := New(0, 0)
	inputs := c.MarkInputs(4)
	w1 := c.EmitGate(AND, inputs[0], inputs[1])
	w2 := c.EmitGate(XOR, w1, inputs[2])
	w3 := c.EmitGate(AND, w2, inputs[3])
	c.MarkOutputs([]Wire{w2, w3})
	//
	data := c.Serialize()
	//
	back, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	//
	if back.NumWires() != c.NumWires() || back.NumGates() != c.NumGates() {
		t.Errorf("roundtrip changed shape: %d/%d wires, %d/%d gates",
			back.NumWires(), c.NumWires(), back.NumGates(), c.NumGates())
	}
	//
	for i, g := range back.Gates() {
		if g != c.Gates()[i] {
			t.Errorf("gate %d changed in roundtrip: %v vs %v", i, g, c.Gates()[i])
		}
	}
	// A corrupted byte must be caught by the fingerprint.
	data[len(data)-40] ^= 1
	//
	if _, err := Deserialize(data); err == nil {
		t.Errorf("corrupted circuit deserialized without error")
	}
}

func Test_Witness_PackBits(t *testing.T) {
	t.Parallel()
	//
	bits := bitset.New(70)
	bits.Set(0)
	bits.Set(63)
	bits.Set(65)
	//
	elements := PackBits(bits, 70)
	if len(elements) != 2 {
		t.Fatalf("packed %d elements, expected 2", len(elements))
	}
	//
	if v := elements[0].Uint64(); v != 1|1<<63 {
		t.Errorf("element 0 = 0x%x", v)
	}
	//
	if v := elements[1].Uint64(); v != 2 {
		t.Errorf("element 1 = 0x%x", v)
	}
}

func setBit(bs *bitset.BitSet, i uint, v bool) {
	if v {
		bs.Set(i)
	}
}
