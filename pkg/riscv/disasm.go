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

import (
	"fmt"
)

// Mnemonic determines the assembly name of this instruction, or "unknown"
// for unrecognised funct combinations.
func (i Insn) Mnemonic() string {
	switch i.Opcode {
	case OpLui:
		return "lui"
	case OpAuipc:
		return "auipc"
	case OpJal:
		return "jal"
	case OpJalr:
		return "jalr"
	case OpFence:
		return "fence"
	case OpBranch:
		return pick(i.Funct3, map[uint32]string{
			0b000: "beq", 0b001: "bne", 0b100: "blt",
			0b101: "bge", 0b110: "bltu", 0b111: "bgeu",
		})
	case OpLoad:
		return pick(i.Funct3, map[uint32]string{
			0b000: "lb", 0b001: "lh", 0b010: "lw",
			0b100: "lbu", 0b101: "lhu",
		})
	case OpStore:
		return pick(i.Funct3, map[uint32]string{
			0b000: "sb", 0b001: "sh", 0b010: "sw",
		})
	case OpImm:
		switch i.Funct3 {
		case 0b001:
			if i.Funct7 != 0 {
				return "unknown"
			}
			//
			return "slli"
		case 0b101:
			if i.Funct7&0x20 != 0 {
				return "srai"
			}
			//
			return "srli"
		default:
			return pick(i.Funct3, map[uint32]string{
				0b000: "addi", 0b010: "slti", 0b011: "sltiu",
				0b100: "xori", 0b110: "ori", 0b111: "andi",
			})
		}
	case OpReg:
		switch {
		case i.Funct3 == 0b000 && i.Funct7 == 0x20:
			return "sub"
		case i.Funct3 == 0b101 && i.Funct7 == 0x20:
			return "sra"
		case i.Funct7 != 0:
			return "unknown"
		default:
			return pick(i.Funct3, map[uint32]string{
				0b000: "add", 0b001: "sll", 0b010: "slt", 0b011: "sltu",
				0b100: "xor", 0b101: "srl", 0b110: "or", 0b111: "and",
			})
		}
	case OpSystem:
		if i.Imm == 1 {
			return "ebreak"
		}
		//
		return "ecall"
	default:
		return "unknown"
	}
}

func (i Insn) String() string {
	m := i.Mnemonic()
	//
	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s x%d, x%d, x%d", m, i.Rd, i.Rs1, i.Rs2)
	case FormatI:
		switch i.Opcode {
		case OpLoad:
			return fmt.Sprintf("%s x%d, %d(x%d)", m, i.Rd, i.Imm, i.Rs1)
		case OpSystem, OpFence:
			return m
		default:
			return fmt.Sprintf("%s x%d, x%d, %d", m, i.Rd, i.Rs1, i.Imm)
		}
	case FormatS:
		return fmt.Sprintf("%s x%d, %d(x%d)", m, i.Rs2, i.Imm, i.Rs1)
	case FormatB:
		return fmt.Sprintf("%s x%d, x%d, %d", m, i.Rs1, i.Rs2, i.Imm)
	case FormatU:
		return fmt.Sprintf("%s x%d, 0x%x", m, i.Rd, uint32(i.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%s x%d, %d", m, i.Rd, i.Imm)
	default:
		return m
	}
}

func pick(key uint32, table map[uint32]string) string {
	if s, ok := table[key]; ok {
		return s
	}
	//
	return "unknown"
}
