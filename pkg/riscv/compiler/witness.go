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
	"github.com/bits-and-blooms/bitset"
)

// InputWitness lays out a concrete machine state exactly as the circuit's
// input range expects it: PC bits, then the 32 register bundles, then one
// bit per memory byte (ascending address, LSB first).  Image bytes beyond
// its length read as zero.
func InputWitness(cfg Config, pc uint32, regs [32]uint32, image []byte) *bitset.BitSet {
	memBytes := cfg.MemoryBytes()
	bits := bitset.New(XLEN + 32*XLEN + 8*memBytes)
	offset := setBits(bits, 0, uint64(pc), XLEN)
	//
	for _, reg := range regs {
		offset = setBits(bits, offset, uint64(reg), XLEN)
	}
	//
	for i := uint(0); i < memBytes; i++ {
		var b byte
		if i < uint(len(image)) {
			b = image[i]
		}
		//
		offset = setBits(bits, offset, uint64(b), 8)
	}
	//
	return bits
}

func setBits(bits *bitset.BitSet, offset uint, value uint64, width uint) uint {
	for i := uint(0); i < width; i++ {
		if value&(1<<i) != 0 {
			bits.Set(offset + i)
		}
	}
	//
	return offset + width
}
