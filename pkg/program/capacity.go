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
package program

import (
	"fmt"
)

// PCBits is the program counter width in bits.
const PCBits = 32

// RegsBits is the total width of the register file in bits.
const RegsBits = 32 * 32

// Capacity holds the proof backend's fixed input/output bit budget.  The
// compiler must refuse to proceed if a requested memory capacity would make
// either bound exceed it.
type Capacity struct {
	// Maximum total input bits available to the circuit.
	MaxInputBits uint
	// Maximum total output bits available to the circuit.
	MaxOutputBits uint
}

// InputBits determines the number of circuit input bits a given memory
// capacity requires: the two constants, the PC, the register file and one
// bit per memory byte bit.
func InputBits(memBytes uint) uint {
	return 2 + PCBits + RegsBits + 8*memBytes
}

// OutputBits determines the number of circuit output bits a given memory
// capacity requires.
func OutputBits(memBytes uint) uint {
	return PCBits + RegsBits + 8*memBytes
}

// Check validates a requested memory capacity against the backend budget,
// reporting requested versus available bit counts on failure.
func (c Capacity) Check(memBytes uint) error {
	if in := InputBits(memBytes); c.MaxInputBits != 0 && in > c.MaxInputBits {
		return fmt.Errorf("memory of %d bytes needs %d input bits, but only %d are available",
			memBytes, in, c.MaxInputBits)
	}
	//
	if out := OutputBits(memBytes); c.MaxOutputBits != 0 && out > c.MaxOutputBits {
		return fmt.Errorf("memory of %d bytes needs %d output bits, but only %d are available",
			memBytes, out, c.MaxOutputBits)
	}
	//
	return nil
}
