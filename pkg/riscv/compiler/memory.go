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
package compiler

import (
	"github.com/consensys/go-zkriscv/pkg/circuit"
	"github.com/consensys/go-zkriscv/pkg/circuit/gadgets"
)

// Memory gives load/store instructions the illusion of a flat addressable
// byte array using only gates.  It is a bounded collection of 32-bit word
// cells covering [base, base+4*len(cells)); an access compiles into a
// selection network over all cells, keyed by a one-hot address-match
// predicate per cell.  Per-access gate cost is therefore proportional to the
// configured capacity, not to the address width: there is no indexable
// storage primitive at the gate level.
//
// Like registers, cells are replaced SSA-style on writes; a Memory value is
// immutable and Write returns its successor.
type Memory struct {
	base  uint32
	cells []circuit.Bundle
}

// newMemory groups the memory input wires (one per byte bit, ascending
// address, LSB first) into word cell bundles.
func newMemory(base uint32, bits []circuit.Wire) *Memory {
	cells := make([]circuit.Bundle, len(bits)/32)
	//
	for i := range cells {
		cells[i] = circuit.Bundle(bits[i*32 : (i+1)*32])
	}
	//
	return &Memory{base, cells}
}

// Bits flattens all cells back into a single wire sequence, ascending
// address, LSB first.  Used when marking circuit outputs.
func (m *Memory) Bits() []circuit.Wire {
	bits := make([]circuit.Wire, 0, len(m.cells)*32)
	for _, cell := range m.cells {
		bits = append(bits, cell...)
	}
	//
	return bits
}

// Size returns the memory capacity in bytes.
func (m *Memory) Size() uint {
	return uint(len(m.cells)) * 4
}

// Read compiles a width-correct load at the given address bundle.  funct3
// encodes the width and signedness exactly as in the load instruction
// encoding.  A statically known out-of-capacity address is rejected; a
// dynamic address matching no cell reads as zero, mirroring the emulator's
// permissive policy.
func (m *Memory) Read(c *circuit.Circuit, addr circuit.Bundle, funct3 uint32) (circuit.Bundle, error) {
	if err := m.boundsCheck(addr, accessWidth(funct3)); err != nil {
		return nil, err
	}
	//
	word := m.readWord(c, addr)
	// Shift the addressed byte down to bit 0.
	word = gadgets.ShiftRightLogical(c, word, byteShift(addr))
	//
	switch funct3 {
	case 0b000:
		return gadgets.SignExtend(word[:8], 32), nil
	case 0b001:
		return gadgets.SignExtend(word[:16], 32), nil
	case 0b100:
		return gadgets.ZeroExtend(word[:8], 32), nil
	case 0b101:
		return gadgets.ZeroExtend(word[:16], 32), nil
	default:
		return word, nil
	}
}

// Write compiles a width-correct store, returning the successor memory.  The
// value is masked and merged against the enclosing cell's existing bits, then
// multiplexed into every cell keyed by its own address-match wire.
func (m *Memory) Write(c *circuit.Circuit, addr, value circuit.Bundle, funct3 uint32) (*Memory, error) {
	width := accessWidth(funct3)
	//
	if err := m.boundsCheck(addr, width); err != nil {
		return nil, err
	}
	//
	var (
		shift = byteShift(addr)
		old   = m.readWord(c, addr)
		mask  = gadgets.ShiftLeft(c, circuit.ConstBundle(1<<(8*width)-1, 32), shift)
		val   = gadgets.ShiftLeft(c, gadgets.ZeroExtend(value[:8*width], 32), shift)
	)
	// Merge the shifted value into the cell's remaining bits.
	merged := gadgets.OrBits(c, gadgets.AndBits(c, old, gadgets.NotBits(c, mask)), val)
	//
	next := &Memory{m.base, make([]circuit.Bundle, len(m.cells))}
	//
	for i, cell := range m.cells {
		match := m.cellMatch(c, addr, uint(i))
		next.cells[i] = gadgets.Select(c, match, merged, cell)
	}
	//
	return next, nil
}

// readWord builds the one-hot selection network producing the 32-bit cell
// enclosing the given byte address: each cell's bits are gated by its match
// wire and the results OR-reduced across all cells.
func (m *Memory) readWord(c *circuit.Circuit, addr circuit.Bundle) circuit.Bundle {
	acc := circuit.ZeroBundle(32)
	//
	for i, cell := range m.cells {
		match := m.cellMatch(c, addr, uint(i))
		gated := make(circuit.Bundle, 32)
		//
		for j, w := range cell {
			gated[j] = gadgets.And(c, match, w)
		}
		//
		acc = gadgets.OrBits(c, acc, gated)
	}
	//
	return acc
}

// cellMatch builds the equality predicate between the word-aligned access
// address and cell i's constant address.
func (m *Memory) cellMatch(c *circuit.Circuit, addr circuit.Bundle, i uint) circuit.Wire {
	aligned := make(circuit.Bundle, len(addr))
	copy(aligned, addr)
	aligned[0], aligned[1] = circuit.Zero, circuit.Zero
	//
	return gadgets.Equal(c, aligned, circuit.ConstBundle(uint64(m.base)+uint64(i)*4, 32))
}

// byteShift builds the bit-shift amount selecting the addressed byte within
// its cell: the low two address wires scaled by 8.
func byteShift(addr circuit.Bundle) circuit.Bundle {
	return circuit.Bundle{circuit.Zero, circuit.Zero, circuit.Zero, addr[0], addr[1]}
}

// boundsCheck rejects accesses whose address bundle is statically known (all
// constant wires) and provably outside the configured capacity.  Dynamic
// addresses fall through to the match network.
func (m *Memory) boundsCheck(addr circuit.Bundle, width uint) error {
	v, known := addr.Constant()
	if !known {
		return nil
	}
	//
	a := uint32(v)
	if a < m.base || uint(a-m.base)+width > m.Size() {
		return &MemoryOutOfRangeError{a, width, m.base, m.Size()}
	}
	//
	return nil
}

func accessWidth(funct3 uint32) uint {
	switch funct3 & 0b11 {
	case 0b000:
		return 1
	case 0b001:
		return 2
	default:
		return 4
	}
}
