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
	"encoding/binary"
	"fmt"
	"io"
)

// Magic number identifying a serialized gate circuit.
const circuitMagic uint64 = 0x7a6b7230676174 // "zkr0gat"

// Serialize converts the circuit into a byte array for storage or
// transmission to the proof backend.  Layout: magic, wire count, input range,
// output range, gate count, then one (op, left, right, out) quad per gate,
// followed by the circuit fingerprint.  All integers are little-endian
// uint64s except the per-gate op byte.
func (c *Circuit) Serialize() []byte {
	var o outputBuf
	//
	o.appendUint64(circuitMagic)
	o.appendUint64(uint64(c.nwires))
	o.appendUint64(uint64(c.inputStart))
	o.appendUint64(uint64(c.ninputs))
	o.appendUint64(uint64(c.outputStart))
	o.appendUint64(uint64(c.noutputs))
	o.appendUint64(uint64(len(c.gates)))
	//
	for _, g := range c.gates {
		o.appendUint8(uint8(g.Op))
		o.appendUint64(uint64(g.Left))
		o.appendUint64(uint64(g.Right))
		o.appendUint64(uint64(g.Out))
	}
	//
	fingerprint := c.Fingerprint()
	o.append(fingerprint[:])
	//
	return o.bytes
}

// Deserialize reconstructs a circuit from its serialized form, validating the
// magic header and the embedded fingerprint.
func Deserialize(data []byte) (*Circuit, error) {
	in := inputBuf{bytes: data}
	//
	if in.readUint64() != circuitMagic {
		return nil, fmt.Errorf("invalid circuit file header")
	}
	//
	c := &Circuit{}
	c.nwires = uint(in.readUint64())
	c.inputStart = uint(in.readUint64())
	c.ninputs = uint(in.readUint64())
	c.outputStart = uint(in.readUint64())
	c.noutputs = uint(in.readUint64())
	ngates := in.readUint64()
	//
	c.gates = make([]Gate, ngates)
	for i := uint64(0); i < ngates; i++ {
		c.gates[i].Op = Op(in.readUint8())
		c.gates[i].Left = Wire(in.readUint64())
		c.gates[i].Right = Wire(in.readUint64())
		c.gates[i].Out = Wire(in.readUint64())
	}
	//
	if in.err != nil {
		return nil, in.err
	}
	// Check embedded fingerprint matches recomputed one.
	expected := c.Fingerprint()
	actual := in.read(len(expected))
	//
	if in.err != nil {
		return nil, in.err
	}
	//
	for i := range expected {
		if expected[i] != actual[i] {
			return nil, fmt.Errorf("circuit fingerprint mismatch")
		}
	}
	//
	return c, c.Validate()
}

// WriteText emits the circuit in a human-readable textual form: a header line
// with wire/input/output counts followed by one gate per line.  Intended for
// debugging and for proof backends consuming Bristol-style gate lists.
func (c *Circuit) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %d %d %d %d %d\n", c.NumGates(), c.nwires,
		c.inputStart, c.ninputs, c.outputStart, c.noutputs)
	if err != nil {
		return err
	}
	//
	for _, g := range c.gates {
		if _, err := fmt.Fprintf(w, "%d %d %d %s\n", g.Left, g.Right, g.Out, g.Op); err != nil {
			return err
		}
	}
	//
	return nil
}

// ============================================================================
// Buffer helpers
// ============================================================================

type outputBuf struct {
	bytes []byte
}

func (o *outputBuf) appendUint64(v uint64) {
	o.bytes = binary.LittleEndian.AppendUint64(o.bytes, v)
}

func (o *outputBuf) appendUint8(v uint8) {
	o.bytes = append(o.bytes, v)
}

func (o *outputBuf) append(bs []byte) {
	o.bytes = append(o.bytes, bs...)
}

type inputBuf struct {
	bytes []byte
	err   error
}

func (in *inputBuf) readUint64() uint64 {
	if in.err != nil {
		return 0
	} else if len(in.bytes) < 8 {
		in.err = fmt.Errorf("truncated circuit file")
		return 0
	}
	//
	v := binary.LittleEndian.Uint64(in.bytes)
	in.bytes = in.bytes[8:]
	//
	return v
}

func (in *inputBuf) readUint8() uint8 {
	if in.err != nil {
		return 0
	} else if len(in.bytes) < 1 {
		in.err = fmt.Errorf("truncated circuit file")
		return 0
	}
	//
	v := in.bytes[0]
	in.bytes = in.bytes[1:]
	//
	return v
}

func (in *inputBuf) read(n int) []byte {
	if in.err != nil {
		return nil
	} else if len(in.bytes) < n {
		in.err = fmt.Errorf("truncated circuit file")
		return nil
	}
	//
	bs := in.bytes[:n]
	in.bytes = in.bytes[n:]
	//
	return bs
}
