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

// Package riscv holds the instruction decoding shared by the reference
// emulator and the circuit compiler.  Both consume the exact same field
// extraction and immediate sign-extension rules, which rules out any decode
// divergence between the two engines.
package riscv

import (
	"fmt"
)

// Format classifies an instruction by its field layout.
type Format uint8

const (
	// FormatR covers register-register operations (ADD, SUB, ...).
	FormatR Format = iota
	// FormatI covers register-immediate operations, loads and JALR.
	FormatI
	// FormatS covers stores.
	FormatS
	// FormatB covers conditional branches.
	FormatB
	// FormatU covers LUI and AUIPC.
	FormatU
	// FormatJ covers JAL.
	FormatJ
)

// Base opcodes of the RV32I instruction set (bits 0..6 of the word).
const (
	OpLui    uint32 = 0b0110111
	OpAuipc  uint32 = 0b0010111
	OpJal    uint32 = 0b1101111
	OpJalr   uint32 = 0b1100111
	OpBranch uint32 = 0b1100011
	OpLoad   uint32 = 0b0000011
	OpStore  uint32 = 0b0100011
	OpImm    uint32 = 0b0010011
	OpReg    uint32 = 0b0110011
	OpSystem uint32 = 0b1110011
	OpFence  uint32 = 0b0001111
)

// Insn is a decoded instruction: the raw word, its format class and every
// field the executors consult.  The immediate is already sign-extended per
// the format's rules.
type Insn struct {
	Word   uint32
	Format Format
	Opcode uint32
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Funct3 uint32
	Funct7 uint32
	Imm    int32
}

// Decode extracts the fields of a 32-bit instruction word, returning an error
// for any opcode outside the RV32I base set.
func Decode(word uint32) (Insn, error) {
	insn := Insn{
		Word:   word,
		Opcode: word & 0x7f,
		Rd:     (word >> 7) & 0x1f,
		Rs1:    (word >> 15) & 0x1f,
		Rs2:    (word >> 20) & 0x1f,
		Funct3: (word >> 12) & 0x7,
		Funct7: (word >> 25) & 0x7f,
	}
	//
	switch insn.Opcode {
	case OpReg:
		insn.Format = FormatR
	case OpImm, OpLoad, OpJalr, OpSystem, OpFence:
		insn.Format = FormatI
		insn.Imm = immI(word)
	case OpStore:
		insn.Format = FormatS
		insn.Imm = immS(word)
	case OpBranch:
		insn.Format = FormatB
		insn.Imm = immB(word)
	case OpLui, OpAuipc:
		insn.Format = FormatU
		insn.Imm = immU(word)
	case OpJal:
		insn.Format = FormatJ
		insn.Imm = immJ(word)
	default:
		return insn, fmt.Errorf("unknown opcode 0x%02x (word 0x%08x)", insn.Opcode, word)
	}
	//
	return insn, nil
}

// CheckALU validates the funct7 bits of a shared R/I-type arithmetic or
// logic operation.  Only SUB, SRA and SRAI use funct7 0x20; every other
// combination (e.g. the M-extension encodings at funct7 0x01) has no defined
// behaviour here and must be rejected rather than executed as its funct7=0
// counterpart.
func CheckALU(funct3, funct7 uint32) error {
	switch funct3 {
	case 0b000, 0b101:
		if funct7 != 0 && funct7 != 0x20 {
			return fmt.Errorf("unsupported alu operation (funct3=%d, funct7=0x%02x)", funct3, funct7)
		}
	default:
		if funct7 != 0 {
			return fmt.Errorf("unsupported alu operation (funct3=%d, funct7=0x%02x)", funct3, funct7)
		}
	}
	//
	return nil
}

// immI extracts the 12-bit I-type immediate (bits 20..31), sign extended.
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immS extracts the 12-bit S-type immediate (bits 25..31 and 7..11), sign
// extended.
func immS(word uint32) int32 {
	return (int32(word) >> 20 &^ 0x1f) | int32((word>>7)&0x1f)
}

// immB extracts the 13-bit B-type immediate (bit 0 implicitly zero), sign
// extended.
func immB(word uint32) int32 {
	imm := (int32(word) >> 31 << 12) |
		int32((word>>7)&0x1)<<11 |
		int32((word>>25)&0x3f)<<5 |
		int32((word>>8)&0xf)<<1
	//
	return imm
}

// immU extracts the U-type immediate: the top 20 bits of the word, low 12
// bits zero.
func immU(word uint32) int32 {
	return int32(word & 0xfffff000)
}

// immJ extracts the 21-bit J-type immediate (bit 0 implicitly zero), sign
// extended.
func immJ(word uint32) int32 {
	imm := (int32(word) >> 31 << 20) |
		int32((word>>12)&0xff)<<12 |
		int32((word>>20)&0x1)<<11 |
		int32((word>>21)&0x3ff)<<1
	//
	return imm
}
