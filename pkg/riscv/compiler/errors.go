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
	"fmt"
)

// UnsupportedOpcodeError signals an instruction for which no gate pattern
// exists: either decoding failed outright, or the opcode/funct combination
// is outside the supported set.  This is a coverage gap and is always
// reported, never silently skipped.
type UnsupportedOpcodeError struct {
	// Position of the offending instruction in the compiled sequence.
	Index uint
	// Raw instruction word.
	Word uint32
	// Underlying cause.
	Cause error
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("instruction %d (0x%08x): unsupported: %v", e.Index, e.Word, e.Cause)
}

func (e *UnsupportedOpcodeError) Unwrap() error {
	return e.Cause
}

// MemoryOutOfRangeError signals an access whose address is statically known
// to fall outside the configured memory capacity.  An ungated gate-level
// access to a non-existent cell would be a correctness hole, hence this is
// rejected at compile time rather than deferred to evaluation.
type MemoryOutOfRangeError struct {
	// Statically known address of the access.
	Addr uint32
	// Access width in bytes.
	Width uint
	// Configured memory window.
	Base uint32
	Size uint
}

func (e *MemoryOutOfRangeError) Error() string {
	return fmt.Sprintf("memory access at 0x%x (%d bytes) outside capacity [0x%x,0x%x)",
		e.Addr, e.Width, e.Base, e.Base+uint32(e.Size))
}

// InstructionError wraps any error arising while compiling one instruction
// with enough context (index, raw word) to reproduce it.
type InstructionError struct {
	Index uint
	Word  uint32
	Cause error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d (0x%08x): %v", e.Index, e.Word, e.Cause)
}

func (e *InstructionError) Unwrap() error {
	return e.Cause
}
