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
	"fmt"
)

// Wire identifies a single boolean signal within a circuit.  Wire handles are
// dense and monotonically increasing; a wire is never reused or freed.
type Wire uint

// Zero is the pre-allocated wire carrying the constant 0.
const Zero Wire = 0

// One is the pre-allocated wire carrying the constant 1.
const One Wire = 1

// Op determines the boolean operation a gate performs.  Only a two-input
// AND/XOR basis exists at the gate level; richer operations (OR, NOT, MUX)
// are derived from it by the gadgets package.
type Op uint8

const (
	// AND computes the conjunction of its two input wires.
	AND Op = iota
	// XOR computes the exclusive disjunction of its two input wires.
	XOR
)

func (op Op) String() string {
	switch op {
	case AND:
		return "AND"
	case XOR:
		return "XOR"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Gate is an immutable two-input boolean operation.  Its output is always a
// wire freshly allocated at the moment the gate is appended, which makes the
// gate list acyclic by construction: no input can name a wire which does not
// yet exist, and no output can clobber a wire already read.
type Gate struct {
	Op          Op
	Left, Right Wire
	Out         Wire
}

// CapacityError signals that the configured wire or gate budget would be
// exceeded.  It is fatal to the enclosing compilation; the only remedy is to
// reconfigure capacity and start again.
type CapacityError struct {
	// Kind of resource exhausted ("wires" or "gates").
	Kind string
	// Limit which would have been exceeded.
	Limit uint
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("circuit capacity exceeded (%s limit %d)", e.Kind, e.Limit)
}

// Circuit is a growable, append-only list of gates over a pool of wires,
// together with designated input and output wire ranges.  Wires 0 and 1 carry
// the constants 0 and 1 respectively, and exist from creation.  Gates are
// evaluated downstream in append order, hence nothing is ever removed or
// rewritten once appended.
type Circuit struct {
	gates  []Gate
	nwires uint
	// Contiguous range of input wires [inputStart, inputStart+ninputs).
	inputStart uint
	ninputs    uint
	// Contiguous range of output wires [outputStart, outputStart+noutputs).
	outputStart uint
	noutputs    uint
	// Configured capacity (zero means unbounded).
	maxWires uint
	maxGates uint
	// Sticky error, set on the first capacity violation.  Once set, all
	// subsequent allocations are no-ops returning the zero wire.
	err error
}

// New constructs an empty circuit holding only the two constant wires.
// Capacity limits of zero disable the corresponding bound.
func New(maxWires, maxGates uint) *Circuit {
	return &Circuit{
		nwires:   2,
		maxWires: maxWires,
		maxGates: maxGates,
	}
}

// AllocateWire mints a fresh wire.  If the wire budget is exhausted the
// circuit enters its error state and the zero wire is returned.
func (c *Circuit) AllocateWire() Wire {
	if c.err != nil {
		return Zero
	}
	//
	if c.maxWires != 0 && c.nwires >= c.maxWires {
		c.err = &CapacityError{"wires", c.maxWires}
		return Zero
	}
	//
	w := Wire(c.nwires)
	c.nwires++
	//
	return w
}

// AllocateWires mints n fresh, consecutive wires.
func (c *Circuit) AllocateWires(n uint) []Wire {
	wires := make([]Wire, n)
	for i := range wires {
		wires[i] = c.AllocateWire()
	}
	//
	return wires
}

// EmitGate appends a gate combining wires a and b, returning its (freshly
// allocated) output wire.  Inputs must already exist.  On capacity exhaustion
// the circuit enters its error state (see Err) and the zero wire is returned.
func (c *Circuit) EmitGate(op Op, a, b Wire) Wire {
	if c.err != nil {
		return Zero
	} else if uint(a) >= c.nwires || uint(b) >= c.nwires {
		panic(fmt.Sprintf("gate input refers to unallocated wire (%d,%d of %d)", a, b, c.nwires))
	}
	// Fold gates over the two constant wires.  Besides costing nothing,
	// this keeps address arithmetic on constant bundles statically known,
	// which the memory subsystem's compile-time bounds check relies on.
	if a <= One && b <= One {
		var bit bool
		//
		switch op {
		case AND:
			bit = a == One && b == One
		case XOR:
			bit = (a == One) != (b == One)
		}
		//
		if bit {
			return One
		}
		//
		return Zero
	}
	//
	return c.appendGate(op, a, b)
}

// appendGate appends a gate unconditionally, bypassing constant folding.
func (c *Circuit) appendGate(op Op, a, b Wire) Wire {
	if c.maxGates != 0 && uint(len(c.gates)) >= c.maxGates {
		c.err = &CapacityError{"gates", c.maxGates}
		return Zero
	}
	//
	out := c.AllocateWire()
	if c.err != nil {
		return Zero
	}
	//
	c.gates = append(c.gates, Gate{op, a, b, out})
	//
	return out
}

// Err reports the sticky capacity error (if any).  Callers emitting compound
// gate patterns check this once per logical step rather than per gate.
func (c *Circuit) Err() error {
	return c.err
}

// MarkInputs allocates n fresh consecutive wires and designates them as the
// circuit's input range.  Inputs are sources: they are never the output of
// any gate.  May be called once only.
func (c *Circuit) MarkInputs(n uint) []Wire {
	if c.ninputs != 0 {
		panic("circuit inputs already marked")
	}
	//
	c.inputStart = c.nwires
	c.ninputs = n
	//
	return c.AllocateWires(n)
}

// MarkOutputs designates the circuit's outputs.  Because computed values live
// on scattered wires, each is copied through an identity gate (XOR with the
// constant 0) into a fresh contiguous range, so the declared output range is
// always dense and every output wire is produced by exactly one gate.  The
// identity gates are appended even for constant wires, since the range must
// stay dense.
func (c *Circuit) MarkOutputs(wires []Wire) []Wire {
	if c.noutputs != 0 {
		panic("circuit outputs already marked")
	}
	//
	start := c.nwires
	outs := make([]Wire, len(wires))
	//
	for i, w := range wires {
		outs[i] = c.appendGate(XOR, w, Zero)
	}
	//
	c.outputStart = start
	c.noutputs = uint(len(wires))
	//
	return outs
}

// Gates returns the (read-only) ordered gate list.
func (c *Circuit) Gates() []Gate {
	return c.gates
}

// NumWires returns the total number of wires allocated so far, including the
// two constants.
func (c *Circuit) NumWires() uint {
	return c.nwires
}

// NumGates returns the number of gates appended so far.
func (c *Circuit) NumGates() uint {
	return uint(len(c.gates))
}

// InputRange returns the start and length of the designated input range.
func (c *Circuit) InputRange() (uint, uint) {
	return c.inputStart, c.ninputs
}

// OutputRange returns the start and length of the designated output range.
func (c *Circuit) OutputRange() (uint, uint) {
	return c.outputStart, c.noutputs
}

// Validate walks the gate list checking the structural invariants on which
// downstream evaluation relies: every gate input precedes its output, outputs
// are dense and strictly increasing, no input wire is ever a gate output, and
// the declared output range is covered by gates.
func (c *Circuit) Validate() error {
	defined := uint(2)
	//
	if c.inputStart == 2 {
		defined += c.ninputs
	}
	//
	for i, g := range c.gates {
		if uint(g.Left) >= uint(g.Out) || uint(g.Right) >= uint(g.Out) {
			return fmt.Errorf("gate %d: input wire does not precede output %d", i, g.Out)
		} else if uint(g.Out) < defined {
			return fmt.Errorf("gate %d: output %d redefines an existing wire", i, g.Out)
		} else if inRange(uint(g.Out), c.inputStart, c.ninputs) {
			return fmt.Errorf("gate %d: output %d lies in the input range", i, g.Out)
		}
		//
		defined = uint(g.Out) + 1
	}
	//
	if defined > c.nwires {
		return fmt.Errorf("gate outputs exceed wire pool (%d > %d)", defined, c.nwires)
	}
	//
	for w := c.outputStart; w < c.outputStart+c.noutputs; w++ {
		if w >= defined {
			return fmt.Errorf("output wire %d is not produced by any gate", w)
		}
	}
	//
	return nil
}

func inRange(w, start, n uint) bool {
	return n != 0 && w >= start && w < start+n
}
