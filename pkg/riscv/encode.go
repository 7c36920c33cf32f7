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
package riscv

// Instruction word encoders, the inverses of Decode.  Used to build literal
// instruction arrays for the differential test harness.

// EncodeR builds an R-type word.
func EncodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

// EncodeI builds an I-type word from a signed 12-bit immediate.
func EncodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xfff)<<20
}

// EncodeS builds an S-type word from a signed 12-bit immediate.
func EncodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	i := uint32(imm)
	//
	return opcode | (i&0x1f)<<7 | funct3<<12 | rs1<<15 | rs2<<20 | (i>>5&0x7f)<<25
}

// EncodeB builds a B-type word from a signed 13-bit immediate (bit 0 zero).
func EncodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	i := uint32(imm)
	//
	return opcode | (i>>11&0x1)<<7 | (i>>1&0xf)<<8 | funct3<<12 | rs1<<15 |
		rs2<<20 | (i>>5&0x3f)<<25 | (i>>12&0x1)<<31
}

// EncodeU builds a U-type word; imm supplies the top 20 bits.
func EncodeU(opcode, rd, imm uint32) uint32 {
	return opcode | rd<<7 | imm<<12
}

// EncodeJ builds a J-type word from a signed 21-bit immediate (bit 0 zero).
func EncodeJ(opcode, rd uint32, imm int32) uint32 {
	i := uint32(imm)
	//
	return opcode | rd<<7 | (i>>12&0xff)<<12 | (i>>11&0x1)<<20 |
		(i>>1&0x3ff)<<21 | (i>>20&0x1)<<31
}

// Convenience encoders for the common instructions exercised by the test
// harness.

// Add encodes "add rd, rs1, rs2".
func Add(rd, rs1, rs2 uint32) uint32 {
	return EncodeR(OpReg, 0b000, 0, rd, rs1, rs2)
}

// Sub encodes "sub rd, rs1, rs2".
func Sub(rd, rs1, rs2 uint32) uint32 {
	return EncodeR(OpReg, 0b000, 0x20, rd, rs1, rs2)
}

// Addi encodes "addi rd, rs1, imm".
func Addi(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpImm, 0b000, rd, rs1, imm)
}

// Lw encodes "lw rd, imm(rs1)".
func Lw(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpLoad, 0b010, rd, rs1, imm)
}

// Sw encodes "sw rs2, imm(rs1)".
func Sw(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeS(OpStore, 0b010, rs1, rs2, imm)
}

// Beq encodes "beq rs1, rs2, imm".
func Beq(rs1, rs2 uint32, imm int32) uint32 {
	return EncodeB(OpBranch, 0b000, rs1, rs2, imm)
}

// Jal encodes "jal rd, imm".
func Jal(rd uint32, imm int32) uint32 {
	return EncodeJ(OpJal, rd, imm)
}

// Ecall encodes the environment call terminator.
func Ecall() uint32 {
	return EncodeI(OpSystem, 0b000, 0, 0, 0)
}
