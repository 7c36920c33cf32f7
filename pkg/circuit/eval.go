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

	"github.com/bits-and-blooms/bitset"
)

// Compute evaluates the circuit on the given input bits, streaming the gate
// list once in append order.  The returned bitset assigns a value to every
// wire; callers typically project it back through bundles or the designated
// output range.  Inputs are indexed relative to the input range (input bit i
// drives wire inputStart+i).
func (c *Circuit) Compute(inputs *bitset.BitSet) (*bitset.BitSet, error) {
	if c.err != nil {
		return nil, c.err
	} else if inputs.Len() < uint(c.ninputs) {
		return nil, fmt.Errorf("invalid inputs: got %d bits, expected %d", inputs.Len(), c.ninputs)
	}
	//
	values := bitset.New(c.nwires)
	// Constant-1 wire
	values.Set(uint(One))
	// Assign input wires
	for i := uint(0); i < c.ninputs; i++ {
		if inputs.Test(i) {
			values.Set(c.inputStart + i)
		}
	}
	// Stream gates in append order
	for _, g := range c.gates {
		var bit bool
		//
		left := values.Test(uint(g.Left))
		right := values.Test(uint(g.Right))
		//
		switch g.Op {
		case AND:
			bit = left && right
		case XOR:
			bit = left != right
		default:
			return nil, fmt.Errorf("invalid gate %s", g.Op)
		}
		//
		if bit {
			values.Set(uint(g.Out))
		}
	}
	//
	return values, nil
}

// Outputs projects the designated output range out of a full wire assignment,
// as produced by Compute.
func (c *Circuit) Outputs(values *bitset.BitSet) *bitset.BitSet {
	outputs := bitset.New(c.noutputs)
	//
	for i := uint(0); i < c.noutputs; i++ {
		if values.Test(c.outputStart + i) {
			outputs.Set(i)
		}
	}
	//
	return outputs
}
