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

// Package emulator provides a conventional bit-accurate interpreter for the
// RV32I base instruction set, operating on concrete machine words.  It is the
// oracle against which the circuit compiler's output is validated; it defines
// the ground-truth semantics the compiler must match, instruction by
// instruction.
package emulator

import (
	"fmt"

	"github.com/consensys/go-zkriscv/pkg/riscv"
	log "github.com/sirupsen/logrus"
)

// Machine is the concrete machine state: 32 registers with x0 pinned to
// zero, a program counter, and a byte-addressable memory window with bounds
// checking.
type Machine struct {
	// Register file.  Regs[0] reads as zero; writes to it are dropped.
	Regs [32]uint32
	// Program counter.
	PC uint32
	// Number of instructions executed so far.
	Steps uint64
	// Halt flag, raised by ECALL/EBREAK or a decode failure.
	Halted bool
	// Program text, fetched by address.
	prog     []uint32
	textBase uint32
	// Data memory covering [memBase, memBase+len(mem)).
	mem     []byte
	memBase uint32
}

// New constructs a machine for the given program text with a zeroed data
// memory of memBytes bytes based at memBase.  The PC starts at entry.
func New(prog []uint32, entry, textBase, memBase uint32, memBytes uint) *Machine {
	return &Machine{
		PC:       entry,
		prog:     prog,
		textBase: textBase,
		mem:      make([]byte, memBytes),
		memBase:  memBase,
	}
}

// LoadImage copies a static data image into memory at the given address.
func (m *Machine) LoadImage(addr uint32, data []byte) error {
	if addr < m.memBase || uint(addr-m.memBase)+uint(len(data)) > uint(len(m.mem)) {
		return fmt.Errorf("data image [0x%x,0x%x) outside memory", addr, addr+uint32(len(data)))
	}
	//
	copy(m.mem[addr-m.memBase:], data)
	//
	return nil
}

// Memory returns the raw data memory and its base address.
func (m *Machine) Memory() ([]byte, uint32) {
	return m.mem, m.memBase
}

// Step fetches, decodes and executes the instruction addressed by the
// current PC.  A fetch outside the program text or a decode failure halts
// the machine and surfaces as an error; a normal ECALL/EBREAK halt does not.
func (m *Machine) Step() error {
	index := (m.PC - m.textBase) / 4
	//
	if m.PC < m.textBase || uint(index) >= uint(len(m.prog)) {
		m.Halted = true
		return fmt.Errorf("fetch outside program text (pc=0x%x)", m.PC)
	}
	//
	return m.StepInsn(m.prog[index])
}

// StepInsn executes a single given instruction word against the current
// state.  Used directly by the differential verifier, which drives both
// engines over the same explicit word list.
func (m *Machine) StepInsn(word uint32) error {
	insn, err := riscv.Decode(word)
	if err != nil {
		m.Halted = true
		return err
	}
	//
	if err := m.execute(insn); err != nil {
		m.Halted = true
		return err
	}
	//
	m.Steps++
	//
	return nil
}

// Run executes instructions until the machine halts or maxSteps have been
// performed.
func (m *Machine) Run(maxSteps uint64) error {
	for !m.Halted && m.Steps < maxSteps {
		if err := m.Step(); err != nil {
			return err
		}
	}
	//
	return nil
}

func (m *Machine) execute(insn riscv.Insn) error {
	var (
		rs1    = m.Regs[insn.Rs1]
		rs2    = m.Regs[insn.Rs2]
		imm    = uint32(insn.Imm)
		nextPC = m.PC + 4
	)
	//
	switch insn.Opcode {
	case riscv.OpLui:
		m.write(insn.Rd, imm)
	case riscv.OpAuipc:
		m.write(insn.Rd, m.PC+imm)
	case riscv.OpJal:
		m.write(insn.Rd, nextPC)
		nextPC = m.PC + imm
	case riscv.OpJalr:
		m.write(insn.Rd, nextPC)
		nextPC = (rs1 + imm) &^ 1
	case riscv.OpBranch:
		taken, err := branchTaken(insn, rs1, rs2)
		if err != nil {
			return err
		} else if taken {
			nextPC = m.PC + imm
		}
	case riscv.OpLoad:
		value, err := m.load(insn, rs1+imm)
		if err != nil {
			return err
		}
		//
		m.write(insn.Rd, value)
	case riscv.OpStore:
		if err := m.store(insn, rs1+imm, rs2); err != nil {
			return err
		}
	case riscv.OpImm:
		value, err := aluOp(insn.Funct3, immFunct7(insn), rs1, imm)
		if err != nil {
			return err
		}
		//
		m.write(insn.Rd, value)
	case riscv.OpReg:
		value, err := aluOp(insn.Funct3, insn.Funct7, rs1, rs2)
		if err != nil {
			return err
		}
		//
		m.write(insn.Rd, value)
	case riscv.OpSystem:
		// ECALL / EBREAK terminate execution.  CSR instructions share the
		// opcode but are not part of the supported set.
		if insn.Funct3 != 0 {
			return fmt.Errorf("unsupported system instruction (funct3=%d)", insn.Funct3)
		}
		//
		m.Halted = true
	case riscv.OpFence:
		// Memory ordering is trivial on a single hart.
	default:
		return fmt.Errorf("unsupported opcode 0x%02x", insn.Opcode)
	}
	//
	m.PC = nextPC
	//
	return nil
}

// write updates a destination register, dropping any write to x0.
func (m *Machine) write(rd, value uint32) {
	if rd != 0 {
		m.Regs[rd] = value
	}
}

// immFunct7 determines the funct7 bits relevant for an I-type ALU operation.
// Only the shift instructions carry a meaningful funct7 in their immediate.
func immFunct7(insn riscv.Insn) uint32 {
	if insn.Funct3 == 0b001 || insn.Funct3 == 0b101 {
		return insn.Funct7
	}
	//
	return 0
}

// aluOp implements the shared R/I-type arithmetic and logic behaviours.
func aluOp(funct3, funct7, a, b uint32) (uint32, error) {
	if err := riscv.CheckALU(funct3, funct7); err != nil {
		return 0, err
	}
	//
	switch funct3 {
	case 0b000:
		if funct7 == 0x20 {
			return a - b, nil
		}
		//
		return a + b, nil
	case 0b001:
		return a << (b & 31), nil
	case 0b010:
		if int32(a) < int32(b) {
			return 1, nil
		}
		//
		return 0, nil
	case 0b011:
		if a < b {
			return 1, nil
		}
		//
		return 0, nil
	case 0b100:
		return a ^ b, nil
	case 0b101:
		if funct7 == 0x20 {
			return uint32(int32(a) >> (b & 31)), nil
		}
		//
		return a >> (b & 31), nil
	case 0b110:
		return a | b, nil
	case 0b111:
		return a & b, nil
	default:
		return 0, fmt.Errorf("unsupported alu operation (funct3=%d)", funct3)
	}
}

func branchTaken(insn riscv.Insn, rs1, rs2 uint32) (bool, error) {
	switch insn.Funct3 {
	case 0b000:
		return rs1 == rs2, nil
	case 0b001:
		return rs1 != rs2, nil
	case 0b100:
		return int32(rs1) < int32(rs2), nil
	case 0b101:
		return int32(rs1) >= int32(rs2), nil
	case 0b110:
		return rs1 < rs2, nil
	case 0b111:
		return rs1 >= rs2, nil
	default:
		return false, fmt.Errorf("unsupported branch condition (funct3=%d)", insn.Funct3)
	}
}

// load performs a width-correct read with sign or zero extension.  Reads
// outside the memory window are reported and return zero, mirroring a
// permissive emulation policy rather than strict fault semantics.
func (m *Machine) load(insn riscv.Insn, addr uint32) (uint32, error) {
	switch insn.Funct3 {
	case 0b000:
		return uint32(int32(int8(m.loadByte(addr)))), nil
	case 0b001:
		half := uint16(m.loadByte(addr)) | uint16(m.loadByte(addr+1))<<8
		return uint32(int32(int16(half))), nil
	case 0b010:
		word := uint32(m.loadByte(addr)) | uint32(m.loadByte(addr+1))<<8 |
			uint32(m.loadByte(addr+2))<<16 | uint32(m.loadByte(addr+3))<<24
		return word, nil
	case 0b100:
		return uint32(m.loadByte(addr)), nil
	case 0b101:
		return uint32(m.loadByte(addr)) | uint32(m.loadByte(addr+1))<<8, nil
	default:
		return 0, fmt.Errorf("unsupported load width (funct3=%d)", insn.Funct3)
	}
}

func (m *Machine) store(insn riscv.Insn, addr, value uint32) error {
	switch insn.Funct3 {
	case 0b000:
		m.storeByte(addr, byte(value))
	case 0b001:
		m.storeByte(addr, byte(value))
		m.storeByte(addr+1, byte(value>>8))
	case 0b010:
		m.storeByte(addr, byte(value))
		m.storeByte(addr+1, byte(value>>8))
		m.storeByte(addr+2, byte(value>>16))
		m.storeByte(addr+3, byte(value>>24))
	default:
		return fmt.Errorf("unsupported store width (funct3=%d)", insn.Funct3)
	}
	//
	return nil
}

func (m *Machine) loadByte(addr uint32) byte {
	if addr < m.memBase || uint(addr-m.memBase) >= uint(len(m.mem)) {
		log.Warnf("read outside memory (addr=0x%x), returning zero", addr)
		return 0
	}
	//
	return m.mem[addr-m.memBase]
}

func (m *Machine) storeByte(addr uint32, value byte) {
	if addr < m.memBase || uint(addr-m.memBase) >= uint(len(m.mem)) {
		log.Warnf("write outside memory (addr=0x%x), dropped", addr)
		return
	}
	//
	m.mem[addr-m.memBase] = value
}
