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

// Package compiler translates RV32I instructions into boolean gate
// subgraphs.  Machine state threads linearly through the compiled sequence:
// each instruction consumes the wire bundles produced by its predecessor and
// produces replacement bundles, so register "mutation" is an immutable
// sequence of SSA-like reassignments rather than in-place writes.  The
// instruction sequence is known at compile time; the compiler builds no
// dynamic fetch network.
package compiler

import (
	"errors"
	"fmt"

	"github.com/consensys/go-zkriscv/pkg/circuit"
	"github.com/consensys/go-zkriscv/pkg/circuit/gadgets"
	"github.com/consensys/go-zkriscv/pkg/riscv"
	log "github.com/sirupsen/logrus"
)

// XLEN is the register and program counter width in bits.
const XLEN = 32

// Config fixes the shape of a compilation run before it starts.
type Config struct {
	// Base address of the data memory window.
	MemBase uint32
	// Memory capacity in bytes (rounded up to a whole number of words).
	MemBytes uint
	// Maximum number of instructions compiled in one run (zero = unbounded).
	MaxInsns uint
	// Wire and gate budgets handed to the circuit (zero = unbounded).
	MaxWires uint
	MaxGates uint
}

// MemoryBytes returns the configured memory capacity rounded up to a whole
// number of words.  Every consumer of the window size goes through this, so
// the compiler, the emulator and the witness layout always agree on it.
func (c Config) MemoryBytes() uint {
	return (c.MemBytes + 3) &^ 3
}

// State is the circuit-side machine state: one wire bundle per register,
// one for the program counter, and the memory cell set.  Register 0 is
// hard-wired to the constant-zero bundle and never reassigned.
type State struct {
	Regs [32]circuit.Bundle
	PC   circuit.Bundle
	Mem  *Memory
	// Halted marks that an ECALL/EBREAK terminated the sequence here.
	Halted bool
}

// Compiler drives gate emission for a single compilation run.  It owns the
// circuit exclusively; no two runs share one.
type Compiler struct {
	circ *circuit.Circuit
	cfg  Config
}

// New creates a compiler together with the initial machine state.  The
// circuit's input range is laid out as: PC bits, 32 register bundles, then
// one bit per memory byte (ascending address, LSB first) — matching the
// capacity formula 2 + PC_BITS + REGS_BITS + 8*mem_bytes.
func New(cfg Config) (*Compiler, State, error) {
	var state State
	//
	cfg.MemBytes = cfg.MemoryBytes()
	//
	circ := circuit.New(cfg.MaxWires, cfg.MaxGates)
	inputs := circ.MarkInputs(XLEN + 32*XLEN + 8*cfg.MemBytes)
	//
	if err := circ.Err(); err != nil {
		return nil, state, err
	}
	//
	state.PC = circuit.Bundle(inputs[:XLEN])
	// x0 is the constant-zero bundle; its input wires exist for layout
	// purposes but are never read.
	state.Regs[0] = circuit.ZeroBundle(XLEN)
	//
	for i := 1; i < 32; i++ {
		state.Regs[i] = circuit.Bundle(inputs[(i+1)*XLEN : (i+2)*XLEN])
	}
	//
	state.Mem = newMemory(cfg.MemBase, inputs[33*XLEN:])
	//
	return &Compiler{circ, cfg}, state, nil
}

// Circuit returns the circuit under construction.
func (p *Compiler) Circuit() *circuit.Circuit {
	return p.circ
}

// Finalize marks the final machine state as the circuit's output range (PC,
// then registers, then memory) and validates the result.  The circuit must
// not be grown further afterwards.
func (p *Compiler) Finalize(state State) (*circuit.Circuit, error) {
	outputs := make([]circuit.Wire, 0, XLEN+32*XLEN+state.Mem.Size()*8)
	outputs = append(outputs, state.PC...)
	//
	for _, reg := range state.Regs {
		outputs = append(outputs, reg...)
	}
	//
	outputs = append(outputs, state.Mem.Bits()...)
	p.circ.MarkOutputs(outputs)
	//
	if err := p.circ.Err(); err != nil {
		return nil, err
	}
	//
	return p.circ, p.circ.Validate()
}

// CompileProgram compiles an instruction sequence in program order, wiring
// each instruction's output bundles into its successor's inputs, and returns
// the finalized circuit together with the final state.  It stops at the
// configured instruction cap or at a sequence terminator (ECALL/EBREAK); the
// first failing instruction aborts the run, never yielding a partial circuit.
func CompileProgram(cfg Config, words []uint32) (*circuit.Circuit, State, error) {
	p, state, err := New(cfg)
	if err != nil {
		return nil, state, err
	}
	//
	n := uint(len(words))
	if cfg.MaxInsns != 0 && cfg.MaxInsns < n {
		n = cfg.MaxInsns
	}
	//
	for i := uint(0); i < n && !state.Halted; i++ {
		if state, err = p.CompileInstruction(state, words[i], i); err != nil {
			return nil, state, err
		}
	}
	//
	circ, err := p.Finalize(state)
	//
	return circ, state, err
}

// CompileInstruction emits the gate subgraph updating the register and PC
// bundles for one instruction, returning the successor state.  Errors are
// never recoverable mid-instruction: compilation of that instruction aborts
// and the caller decides whether to halt the run.
func (p *Compiler) CompileInstruction(state State, word uint32, index uint) (State, error) {
	insn, err := riscv.Decode(word)
	if err != nil {
		return state, &UnsupportedOpcodeError{index, word, err}
	}
	//
	log.Debugf("compiling %d: %s", index, insn)
	//
	next, err := p.compile(state, insn)
	if err != nil {
		var oor *MemoryOutOfRangeError
		if errors.As(err, &oor) {
			return state, &InstructionError{index, word, err}
		}
		//
		return state, &UnsupportedOpcodeError{index, word, err}
	}
	// Surface any capacity violation accumulated during emission.
	if err := p.circ.Err(); err != nil {
		return state, &InstructionError{index, word, err}
	}
	//
	return next, nil
}

func (p *Compiler) compile(state State, insn riscv.Insn) (State, error) {
	var (
		c      = p.circ
		rs1    = state.Regs[insn.Rs1]
		rs2    = state.Regs[insn.Rs2]
		imm    = circuit.ConstBundle(uint64(uint32(insn.Imm)), XLEN)
		nextPC circuit.Bundle
	)
	//
	nextPC, _ = gadgets.Add(c, state.PC, circuit.ConstBundle(4, XLEN))
	//
	switch insn.Opcode {
	case riscv.OpLui:
		state = writeReg(state, insn.Rd, imm)
	case riscv.OpAuipc:
		sum, _ := gadgets.Add(c, state.PC, imm)
		state = writeReg(state, insn.Rd, sum)
	case riscv.OpJal:
		state = writeReg(state, insn.Rd, nextPC)
		nextPC, _ = gadgets.Add(c, state.PC, imm)
	case riscv.OpJalr:
		target, _ := gadgets.Add(c, rs1, imm)
		target[0] = circuit.Zero
		state = writeReg(state, insn.Rd, nextPC)
		nextPC = target
	case riscv.OpBranch:
		cond, err := p.branchCondition(insn, rs1, rs2)
		if err != nil {
			return state, err
		}
		// Both next-PC candidates are always computed; only the selected
		// value differs between the taken and not-taken cases.
		target, _ := gadgets.Add(c, state.PC, imm)
		nextPC = gadgets.Select(c, cond, target, nextPC)
	case riscv.OpLoad:
		if insn.Funct3 == 0b011 || insn.Funct3 > 0b101 {
			return state, fmt.Errorf("unsupported load width (funct3=%d)", insn.Funct3)
		}
		//
		addr, _ := gadgets.Add(c, rs1, imm)
		value, err := state.Mem.Read(c, addr, insn.Funct3)
		//
		if err != nil {
			return state, err
		}
		//
		state = writeReg(state, insn.Rd, value)
	case riscv.OpStore:
		if insn.Funct3 > 0b010 {
			return state, fmt.Errorf("unsupported store width (funct3=%d)", insn.Funct3)
		}
		//
		addr, _ := gadgets.Add(c, rs1, imm)
		mem, err := state.Mem.Write(c, addr, rs2, insn.Funct3)
		//
		if err != nil {
			return state, err
		}
		//
		state.Mem = mem
	case riscv.OpImm:
		value, err := p.alu(insn.Funct3, immFunct7(insn), rs1, imm)
		if err != nil {
			return state, err
		}
		//
		state = writeReg(state, insn.Rd, value)
	case riscv.OpReg:
		value, err := p.alu(insn.Funct3, insn.Funct7, rs1, rs2)
		if err != nil {
			return state, err
		}
		//
		state = writeReg(state, insn.Rd, value)
	case riscv.OpSystem:
		if insn.Funct3 != 0 {
			return state, fmt.Errorf("unsupported system instruction (funct3=%d)", insn.Funct3)
		}
		// Sequence terminator: execution is statically known to stop here.
		state.Halted = true
	case riscv.OpFence:
		// No-op on a single hart.
	default:
		return state, fmt.Errorf("unsupported opcode 0x%02x", insn.Opcode)
	}
	//
	state.PC = nextPC
	//
	return state, nil
}

// alu emits the gate pattern for the shared R/I-type arithmetic and logic
// behaviours.  The single-wire comparison results are zero-extended back to
// register width.
func (p *Compiler) alu(funct3, funct7 uint32, a, b circuit.Bundle) (circuit.Bundle, error) {
	if err := riscv.CheckALU(funct3, funct7); err != nil {
		return nil, err
	}
	//
	c := p.circ
	//
	switch funct3 {
	case 0b000:
		if funct7 == 0x20 {
			diff, _ := gadgets.Sub(c, a, b)
			return diff, nil
		}
		//
		sum, _ := gadgets.Add(c, a, b)
		//
		return sum, nil
	case 0b001:
		return gadgets.ShiftLeft(c, a, gadgets.Truncate(b, 5)), nil
	case 0b010:
		lt := gadgets.LessSigned(c, a, b)
		return gadgets.ZeroExtend(circuit.Bundle{lt}, XLEN), nil
	case 0b011:
		lt := gadgets.LessUnsigned(c, a, b)
		return gadgets.ZeroExtend(circuit.Bundle{lt}, XLEN), nil
	case 0b100:
		return gadgets.XorBits(c, a, b), nil
	case 0b101:
		if funct7 == 0x20 {
			return gadgets.ShiftRightArith(c, a, gadgets.Truncate(b, 5)), nil
		}
		//
		return gadgets.ShiftRightLogical(c, a, gadgets.Truncate(b, 5)), nil
	case 0b110:
		return gadgets.OrBits(c, a, b), nil
	case 0b111:
		return gadgets.AndBits(c, a, b), nil
	default:
		return nil, fmt.Errorf("unsupported alu operation (funct3=%d)", funct3)
	}
}

func (p *Compiler) branchCondition(insn riscv.Insn, rs1, rs2 circuit.Bundle) (circuit.Wire, error) {
	c := p.circ
	//
	switch insn.Funct3 {
	case 0b000:
		return gadgets.Equal(c, rs1, rs2), nil
	case 0b001:
		return gadgets.Not(c, gadgets.Equal(c, rs1, rs2)), nil
	case 0b100:
		return gadgets.LessSigned(c, rs1, rs2), nil
	case 0b101:
		return gadgets.Not(c, gadgets.LessSigned(c, rs1, rs2)), nil
	case 0b110:
		return gadgets.LessUnsigned(c, rs1, rs2), nil
	case 0b111:
		return gadgets.Not(c, gadgets.LessUnsigned(c, rs1, rs2)), nil
	default:
		return circuit.Zero, fmt.Errorf("unsupported branch condition (funct3=%d)", insn.Funct3)
	}
}

// writeReg installs a new bundle for rd.  Writes to x0 are suppressed: its
// bundle remains the constant zero regardless of the computed result.
func writeReg(state State, rd uint32, value circuit.Bundle) State {
	if rd != 0 {
		state.Regs[rd] = value
	}
	//
	return state
}

// immFunct7 mirrors the emulator: only the I-type shifts carry a meaningful
// funct7 inside their immediate field.
func immFunct7(insn riscv.Insn) uint32 {
	if insn.Funct3 == 0b001 || insn.Funct3 == 0b101 {
		return insn.Funct7
	}
	//
	return 0
}
