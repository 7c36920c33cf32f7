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
	"hash"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/mimc"
)

// Fingerprint computes a MiMC digest over the circuit structure.  The proof
// backend uses this to detect a circuit/witness mismatch before attempting
// proof generation.  Each gate is packed into a single field element
// (op | left | right | out, 200 bits), which keeps every hashed block a
// canonical element of the scalar field.
func (c *Circuit) Fingerprint() [32]byte {
	var (
		h       = mimc.NewMiMC()
		e       fr.Element
		v       big.Int
		digest  [32]byte
		scratch big.Int
	)
	// Hash the shape first
	e.SetUint64(uint64(c.nwires))
	writeElement(h, &e)
	e.SetUint64(uint64(c.inputStart)<<32 | uint64(c.ninputs))
	writeElement(h, &e)
	e.SetUint64(uint64(c.outputStart)<<32 | uint64(c.noutputs))
	writeElement(h, &e)
	// Then every gate
	for _, g := range c.gates {
		v.SetUint64(uint64(g.Out))
		v.Lsh(&v, 64)
		v.Or(&v, scratch.SetUint64(uint64(g.Right)))
		v.Lsh(&v, 64)
		v.Or(&v, scratch.SetUint64(uint64(g.Left)))
		v.Lsh(&v, 8)
		v.Or(&v, scratch.SetUint64(uint64(g.Op)))
		//
		e.SetBigInt(&v)
		writeElement(h, &e)
	}
	//
	copy(digest[:], h.Sum(nil))
	//
	return digest
}

// PackBits packs a bit vector of length n into field elements for the proof
// backend, 64 bits per element, least-significant bit first.
func PackBits(bits *bitset.BitSet, n uint) []fr.Element {
	elements := make([]fr.Element, (n+63)/64)
	//
	for i := range elements {
		var limb uint64
		//
		for j := uint(0); j < 64; j++ {
			bit := uint(i)*64 + j
			if bit < n && bits.Test(bit) {
				limb |= 1 << j
			}
		}
		//
		elements[i].SetUint64(limb)
	}
	//
	return elements
}

// SerializeWitness encodes a packed witness as bytes: element count followed
// by the canonical big-endian encoding of each element.
func SerializeWitness(elements []fr.Element) []byte {
	var o outputBuf
	//
	o.appendUint64(uint64(len(elements)))
	//
	for i := range elements {
		bs := elements[i].Bytes()
		o.append(bs[:])
	}
	//
	return o.bytes
}

func writeElement(h hash.Hash, e *fr.Element) {
	bs := e.Bytes()
	// MiMC accepts any sequence of canonical field elements, hence this
	// cannot fail for values packed within 253 bits.
	if _, err := h.Write(bs[:]); err != nil {
		panic(err)
	}
}
